package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/bundle"
	"github.com/Faultbox/sdfexport/internal/config"
	"github.com/Faultbox/sdfexport/internal/exporter"
	"github.com/Faultbox/sdfexport/internal/host"
	"github.com/Faultbox/sdfexport/internal/logger"
	"github.com/Faultbox/sdfexport/internal/metrics"
	"github.com/Faultbox/sdfexport/pkg/sdf"
)

// exportOptions maps configuration onto a batch.
func exportOptions(cfg *config.Config, runID string) (exporter.Options, error) {
	format, err := host.ParseMeshFormat(cfg.Export.MeshFormat)
	if err != nil {
		return exporter.Options{}, err
	}
	return exporter.Options{
		OutputRoot: cfg.Export.OutputRoot,
		WorldDir:   cfg.Export.WorldDir,
		WorldName:  cfg.Export.WorldName,
		Format:     format,
		SDFVersion: cfg.Export.SDFVersion,
		Author: sdf.Author{
			Name:  cfg.Export.Author.Name,
			Email: cfg.Export.Author.Email,
		},
		IncludePose: cfg.Export.IncludePose,
		Light:       cfg.World.Light,
		Physics:     cfg.World.Physics,
		RunID:       runID,
	}, nil
}

// runExport exports scene, then writes the optional metrics textfile and
// bundle and publishes the bundle.
func runExport(ctx context.Context, cfg *config.Config, scene host.Scene) (*exporter.Report, error) {
	runID := uuid.NewString()
	opts, err := exportOptions(cfg, runID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rec := metrics.New(runID)
	report, err := exporter.New(opts, rec).Run(ctx, scene)
	rec.Finish(start)

	if cfg.Metrics.Textfile != "" {
		if werr := rec.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			logger.Warn("failed to write metrics", zap.Error(werr))
		}
	}
	if err != nil {
		return report, err
	}

	exported := report.Exported()
	logger.Info("export finished",
		zap.String("run", runID),
		zap.Int("exported", len(exported)),
		zap.Int("skipped", len(report.Skipped())),
		zap.Int("textures", report.TextureCount()))

	if cfg.Bundle.Path == "" {
		if cfg.Publish.Enabled() {
			logger.Warn("publish configured without bundle.path, nothing uploaded")
		}
		return report, nil
	}
	entries := bundle.Entries(opts.OutputRoot, exported, report.WorldPath)
	if err := bundle.Create(ctx, cfg.Bundle.Path, entries); err != nil {
		return report, fmt.Errorf("bundle: %w", err)
	}

	if !cfg.Publish.Enabled() {
		return report, nil
	}
	pub, err := bundle.NewPublisher(cfg.Publish)
	if err != nil {
		return report, err
	}
	if err := pub.Publish(ctx, cfg.Bundle.Path, bundle.ObjectKey(runID, cfg.Bundle.Path)); err != nil {
		return report, fmt.Errorf("publish: %w", err)
	}
	return report, nil
}
