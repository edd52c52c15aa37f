// sdfexport converts the mesh objects of a glTF scene into Gazebo model
// packages and tags collision meshes on simulation stages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/collision"
	"github.com/Faultbox/sdfexport/internal/config"
	"github.com/Faultbox/sdfexport/internal/gltfscene"
	"github.com/Faultbox/sdfexport/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "export":
		err = cmdExport(ctx, args)
	case "collide":
		err = cmdCollide(ctx, args)
	case "inspect", "ls":
		err = cmdInspect(args)
	case "init":
		err = cmdInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`sdfexport - glTF scene to Gazebo SDF exporter

Usage:
  sdfexport <command> [options]

Commands:
  export [flags] <scene.gltf|glb>    Export mesh objects as model packages
  collide [flags] <asset.gltf|glb>   Tag mesh prims with collision schemas
  inspect <scene.gltf|glb>           List scene objects
  init [path]                        Write a starter sdfexport.yaml

Examples:
  sdfexport export -out ./models -format obj house.glb
  sdfexport export -bundle house.tar.gz -metrics sdfexport.prom house.glb
  sdfexport collide -o house_collision.glb house.glb`)
}

// setup loads configuration and initializes logging for a subcommand.
func setup(f *config.Flags) (*config.Config, error) {
	cfg, err := config.Load(f)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return cfg, nil
}

func cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: sdfexport export [flags] <scene.gltf|glb>")
	}
	cfg, err := setup(flags)
	if err != nil {
		return err
	}

	scene, err := gltfscene.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	_, err = runExport(ctx, cfg, scene)
	return err
}

func cmdCollide(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("collide", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	prim := fs.String("prim", "", "Stage path to reference the asset under")
	out := fs.String("o", "", "Write the tagged asset to this file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: sdfexport collide [flags] <asset.gltf|glb>")
	}
	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	if *prim != "" {
		cfg.Collision.PrimPath = *prim
	}

	asset, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return err
	}

	stage := gltfscene.NewStage()
	defer stage.Close()

	tagger := collision.NewTagger(collision.Options{
		PrimPath:     cfg.Collision.PrimPath,
		PollInterval: cfg.Collision.PollInterval,
		LoadTimeout:  cfg.Collision.LoadTimeout,
	})
	tagged, err := tagger.Run(ctx, stage, asset)
	if err != nil {
		return err
	}
	logger.Info("collision tagging finished",
		zap.String("asset", asset),
		zap.Int("prims", len(tagged)))

	if *out != "" {
		if err := stage.Save(cfg.Collision.PrimPath, *out); err != nil {
			return fmt.Errorf("save %s: %w", *out, err)
		}
		logger.Info("tagged asset written", zap.String("path", *out))
	}
	return nil
}

func cmdInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sdfexport inspect <scene.gltf|glb>")
	}
	scene, err := gltfscene.Open(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tFACES\tMATERIALS\tTEXTURES")
	for _, obj := range scene.Objects() {
		textures := 0
		for _, m := range obj.Materials() {
			textures += len(m.ImageNodes())
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			obj.Name(), obj.Kind(), obj.FaceCount(), len(obj.Materials()), textures)
	}
	return w.Flush()
}

func cmdInit(args []string) error {
	path := filepath.Join(config.ConfigDir(), "sdfexport.yaml")
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Default().SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
