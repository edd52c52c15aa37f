package exporter

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/host"
	"github.com/Faultbox/sdfexport/pkg/sdf"
)

// harvester relocates the images referenced by one object's materials into
// its package and re-points the material nodes for the rest of the object.
type harvester struct {
	log   *zap.Logger
	scene host.Scene
	job   *Job

	textures []Texture
	warnings []error

	byImage  map[string]Texture // image key -> relocated texture
	byDest   map[string]string  // lower-case file name -> image key
	exact    refIndex           // cleaned old reference -> new reference
	byBase   refIndex           // texture key of an old reference -> new reference
	restores []func()
}

func newHarvester(log *zap.Logger, scene host.Scene, job *Job) *harvester {
	return &harvester{
		log:     log,
		scene:   scene,
		job:     job,
		byImage: make(map[string]Texture),
		byDest:  make(map[string]string),
		exact:   make(refIndex),
		byBase:  make(refIndex),
	}
}

func (h *harvester) run() {
	for _, mat := range h.job.Object.Materials() {
		if mat == nil {
			continue
		}
		for _, node := range mat.ImageNodes() {
			h.harvest(mat, node)
		}
	}
}

func (h *harvester) harvest(mat host.Material, node host.ImageNode) {
	img := node.Image()
	if img == nil {
		return
	}
	tex, seen := h.byImage[img.Key()]
	if !seen {
		var err error
		tex, err = h.relocate(img)
		if err != nil {
			h.warnings = append(h.warnings, &AssetError{
				Object: h.job.Name, Asset: img.Name(), Stage: StageTexture, Err: err,
			})
			return
		}
		h.byImage[img.Key()] = tex
		h.textures = append(h.textures, tex)
		h.log.Debug("texture relocated",
			zap.String("object", h.job.Name),
			zap.String("material", mat.Name()),
			zap.String("source", tex.Source),
			zap.String("dest", tex.Rel))
	}

	ref := meshRelative(tex.Rel)
	for _, old := range []string{node.Path(), img.FilePath()} {
		if old != "" {
			h.exact.add(cleanRef(old), ref)
			h.byBase.add(sdf.TextureKey(old), ref)
		}
	}
	if img.Name() != "" {
		h.byBase.add(sdf.TextureKey(img.Name()), ref)
	}
	prev := node.Path()
	node.SetPath(ref)
	h.restores = append(h.restores, func() { node.SetPath(prev) })
}

func (h *harvester) relocate(img host.Image) (Texture, error) {
	src := img.FilePath()
	if !img.HasPixels() && !readable(src) {
		return Texture{}, ErrNoImageData
	}

	var name string
	var format host.ImageFormat
	if img.Packed() {
		format = ImageFormatFor(img.Name())
		name = packedFileName(img.Name(), format)
		src = img.Name()
	} else {
		name = sdf.SanitizeFileName(filepath.Base(src))
	}
	name = h.claimDest(name, img.Key())

	if err := os.MkdirAll(h.job.texturesPath(), 0755); err != nil {
		return Texture{}, err
	}
	dest := filepath.Join(h.job.texturesPath(), name)
	if img.Packed() {
		if err := h.scene.SaveImage(img, format, dest); err != nil {
			os.Remove(dest)
			return Texture{}, fmt.Errorf("save packed image: %w", err)
		}
	} else if err := copyFile(src, dest); err != nil {
		os.Remove(dest)
		return Texture{}, fmt.Errorf("copy: %w", err)
	}
	return Texture{
		Source: src,
		Packed: img.Packed(),
		Path:   dest,
		Rel:    TexturesDir + "/" + name,
	}, nil
}

// claimDest returns name, or name with a numeric suffix when a different
// image already took it.
func (h *harvester) claimDest(name, key string) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; ; i++ {
		owner, taken := h.byDest[strings.ToLower(candidate)]
		if !taken || owner == key {
			h.byDest[strings.ToLower(candidate)] = key
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
}

// cleanMTL strips the OBJ material companion down to the directives the
// simulator reads and points its texture maps at the relocated files.
func (h *harvester) cleanMTL() error {
	p := h.job.MTLPath()
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil
	}
	err := sdf.CleanMTLFile(p, h.lookup)
	if err != nil {
		return &AssetError{Object: h.job.Name, Asset: p, Stage: StageMTL, Err: err}
	}
	return nil
}

// lookup maps a map_Kd reference from the exported .mtl to the relocated
// texture. Exact paths win; relative references are resolved against the
// meshes directory; a bare file name is used only when a single texture of
// the object carries it. An empty result keeps the reference as written.
func (h *harvester) lookup(ref string) string {
	if r := h.exact.get(cleanRef(ref)); r != "" {
		return r
	}
	if !filepath.IsAbs(ref) {
		dir := filepath.Dir(h.job.MeshPath())
		if r := h.exact.get(cleanRef(filepath.Join(dir, filepath.FromSlash(ref)))); r != "" {
			return r
		}
	}
	return h.byBase.get(sdf.TextureKey(ref))
}

// refIndex maps texture references to relocated paths. A key claimed by two
// different textures is ambiguous and resolves to nothing.
type refIndex map[string]string

func (x refIndex) add(key, ref string) {
	if prev, ok := x[key]; ok && prev != ref {
		x[key] = ""
		return
	}
	x[key] = ref
}

func (x refIndex) get(key string) string { return x[key] }

// cleanRef normalizes separators and dot segments without folding case.
func cleanRef(ref string) string {
	return path.Clean(strings.ReplaceAll(ref, `\`, "/"))
}

// restore puts every re-pointed node back, last change first.
func (h *harvester) restore() {
	for i := len(h.restores) - 1; i >= 0; i-- {
		h.restores[i]()
	}
	h.restores = nil
}

// ImageFormatFor picks JPEG for .jpg/.jpeg names and PNG otherwise.
func ImageFormatFor(name string) host.ImageFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return host.ImageJPEG
	default:
		return host.ImagePNG
	}
}

func packedFileName(name string, format host.ImageFormat) string {
	clean := sdf.SanitizeFileName(name)
	if format == host.ImageJPEG {
		return clean
	}
	ext := filepath.Ext(clean)
	if ext == ".png" {
		return clean
	}
	return strings.TrimSuffix(clean, ext) + ".png"
}

// meshRelative turns a model-relative path into one relative to meshes/,
// where the OBJ and its .mtl live.
func meshRelative(rel string) string {
	return "../" + rel
}

func readable(p string) bool {
	if p == "" {
		return false
	}
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
