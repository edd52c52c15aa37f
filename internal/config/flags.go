package config

import "flag"

// Flags holds command-line overrides. Zero values mean "not set".
type Flags struct {
	Config      string
	Debug       bool
	Output      string
	WorldDir    string
	World       string
	Format      string
	Bundle      string
	Metrics     string
	IncludePose bool
}

// RegisterFlags binds the shared override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Output, "out", "", "Model output root directory")
	fs.StringVar(&f.WorldDir, "world-dir", "", "Directory for the .world file")
	fs.StringVar(&f.World, "world", "", "World name")
	fs.StringVar(&f.Format, "format", "", "Mesh format: stl or obj")
	fs.StringVar(&f.Bundle, "bundle", "", "Write a tar.gz of the model tree to this path")
	fs.StringVar(&f.Metrics, "metrics", "", "Write Prometheus metrics to this textfile")
	fs.BoolVar(&f.IncludePose, "pose", false, "Emit object locations as world poses")
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Output != "" {
		cfg.Export.OutputRoot = f.Output
	}
	if f.WorldDir != "" {
		cfg.Export.WorldDir = f.WorldDir
	}
	if f.World != "" {
		cfg.Export.WorldName = f.World
	}
	if f.Format != "" {
		cfg.Export.MeshFormat = f.Format
	}
	if f.Bundle != "" {
		cfg.Bundle.Path = f.Bundle
	}
	if f.Metrics != "" {
		cfg.Metrics.Textfile = f.Metrics
	}
	if f.IncludePose {
		cfg.Export.IncludePose = true
	}
}
