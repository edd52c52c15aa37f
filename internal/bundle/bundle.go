// Package bundle packs an export into a tar.gz and optionally uploads it to
// S3-compatible object storage.
package bundle

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/mholt/archives"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/logger"
)

// ModelsDir is the archive directory holding the model packages.
const ModelsDir = "models"

// Entries maps the exported model directories and the world file to their
// archive names: models/<name>/... and the world file at the top level.
func Entries(root string, models []string, world string) map[string]string {
	entries := make(map[string]string, len(models)+1)
	for _, m := range models {
		entries[filepath.Join(root, m)] = ModelsDir + "/" + m
	}
	if world != "" {
		entries[world] = filepath.Base(world)
	}
	return entries
}

// Create writes a gzip-compressed tarball of entries to dest. Entries map
// paths on disk to names inside the archive; directories are added
// recursively.
func Create(ctx context.Context, dest string, entries map[string]string) error {
	if len(entries) == 0 {
		return errors.New("nothing to bundle")
	}
	files, err := archives.FilesFromDisk(ctx, nil, entries)
	if err != nil {
		return errors.Wrap(err, "could not collect files")
	}
	// Stable order keeps bundles of identical exports comparable.
	sort.Slice(files, func(i, j int) bool {
		return files[i].NameInArchive < files[j].NameInArchive
	})

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrap(err, "could not create bundle directory")
	}
	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, "could not create bundle file")
	}

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	if err := format.Archive(ctx, out, files); err != nil {
		out.Close()
		os.Remove(dest)
		return errors.Wrap(err, "failed to write archive")
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, "failed to close archive")
	}
	logger.Info("bundle written", zap.String("path", dest), zap.Int("files", len(files)))
	return nil
}
