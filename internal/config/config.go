// Package config handles exporter configuration loading and management.
package config

import "time"

// Config holds all exporter settings.
type Config struct {
	Export    ExportConfig    `yaml:"export"`
	World     WorldConfig     `yaml:"world"`
	Bundle    BundleConfig    `yaml:"bundle"`
	Publish   PublishConfig   `yaml:"publish"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Collision CollisionConfig `yaml:"collision"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ExportConfig holds the batch parameters.
type ExportConfig struct {
	OutputRoot  string       `yaml:"output_root"` // Directory receiving one folder per model
	WorldDir    string       `yaml:"world_dir"`   // Directory receiving <world_name>.world
	WorldName   string       `yaml:"world_name"`
	MeshFormat  string       `yaml:"mesh_format"` // "stl" or "obj"
	SDFVersion  string       `yaml:"sdf_version"`
	IncludePose bool         `yaml:"include_pose"` // Emit object location as <pose> instead of baking it
	Author      AuthorConfig `yaml:"author"`
}

// AuthorConfig is written into every model.config.
type AuthorConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// WorldConfig toggles the fixed world preamble.
type WorldConfig struct {
	Light   bool `yaml:"light"`
	Physics bool `yaml:"physics"`
}

// BundleConfig controls the optional tar.gz of the model tree.
type BundleConfig struct {
	Path string `yaml:"path"`
}

// PublishConfig holds object-storage settings for uploading the bundle.
type PublishConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	SSL       bool   `yaml:"ssl"`
}

// Enabled reports whether enough settings are present to publish.
func (p PublishConfig) Enabled() bool {
	return p.Endpoint != "" && p.Bucket != ""
}

// MetricsConfig controls the Prometheus textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// CollisionConfig holds settings for the collision tagger.
type CollisionConfig struct {
	PrimPath     string        `yaml:"prim_path"`
	PollInterval time.Duration `yaml:"poll_interval"`
	LoadTimeout  time.Duration `yaml:"load_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			OutputRoot: "models",
			WorldDir:   ".",
			WorldName:  "scene",
			MeshFormat: "stl",
			SDFVersion: "1.6",
			Author: AuthorConfig{
				Name:  "Blender Export",
				Email: "noreply@example.com",
			},
		},
		World: WorldConfig{
			Light:   true,
			Physics: true,
		},
		Collision: CollisionConfig{
			PrimPath:     "/World/house",
			PollInterval: 100 * time.Millisecond,
			LoadTimeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
