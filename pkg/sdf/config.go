package sdf

import "encoding/xml"

// ModelConfig is the model.config manifest Gazebo reads from GAZEBO_MODEL_PATH.
type ModelConfig struct {
	XMLName     xml.Name `xml:"model"`
	Name        string   `xml:"name"`
	Version     string   `xml:"version"`
	SDF         SDFRef   `xml:"sdf"`
	Author      Author   `xml:"author"`
	Description string   `xml:"description"`
}

// SDFRef names the descriptor file and its schema version.
type SDFRef struct {
	Version string `xml:"version,attr"`
	File    string `xml:",chardata"`
}

// Author identifies who produced the model.
type Author struct {
	Name  string `xml:"name"`
	Email string `xml:"email"`
}

// ModelFileName is the descriptor name referenced from model.config.
const ModelFileName = "model.sdf"

// ConfigFileName is the manifest name.
const ConfigFileName = "model.config"

// NewModelConfig builds the manifest for a model.
func NewModelConfig(name, version string, author Author) ModelConfig {
	if version == "" {
		version = DefaultVersion
	}
	return ModelConfig{
		Name:        name,
		Version:     "1.0",
		SDF:         SDFRef{Version: version, File: ModelFileName},
		Author:      author,
		Description: "Model of " + name,
	}
}
