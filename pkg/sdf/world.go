package sdf

import "encoding/xml"

// WorldFile is the root of a .world document.
type WorldFile struct {
	XMLName xml.Name `xml:"sdf"`
	Version string   `xml:"version,attr"`
	World   World    `xml:"world"`
}

// World aggregates the exported models of one batch.
type World struct {
	Name     string    `xml:"name,attr"`
	Gravity  *Vector3  `xml:"gravity,omitempty"`
	Physics  *Physics  `xml:"physics,omitempty"`
	Light    *Light    `xml:"light,omitempty"`
	Includes []Include `xml:"include"`
}

// Include references one model by URI.
type Include struct {
	URI  string `xml:"uri"`
	Name string `xml:"name"`
	Pose *Pose  `xml:"pose,omitempty"`
}

// Light is a world light source.
type Light struct {
	Name        string      `xml:"name,attr"`
	Type        string      `xml:"type,attr"`
	CastShadows bool        `xml:"cast_shadows"`
	Pose        Pose        `xml:"pose"`
	Diffuse     Color       `xml:"diffuse"`
	Specular    Color       `xml:"specular"`
	Attenuation Attenuation `xml:"attenuation"`
	Direction   Vector3     `xml:"direction"`
}

// Attenuation describes light falloff.
type Attenuation struct {
	Range     float64 `xml:"range"`
	Constant  float64 `xml:"constant"`
	Linear    float64 `xml:"linear"`
	Quadratic float64 `xml:"quadratic"`
}

// Physics configures the physics engine of a world.
type Physics struct {
	Name               string  `xml:"name,attr"`
	Default            string  `xml:"default,attr"`
	Type               string  `xml:"type,attr"`
	MaxStepSize        float64 `xml:"max_step_size"`
	RealTimeFactor     float64 `xml:"real_time_factor"`
	RealTimeUpdateRate float64 `xml:"real_time_update_rate"`
}

// DefaultSun is the directional light Gazebo ships as model://sun.
func DefaultSun() *Light {
	return &Light{
		Name:        "sun",
		Type:        "directional",
		CastShadows: true,
		Pose:        Pose{0, 0, 10, 0, 0, 0},
		Diffuse:     Color{0.8, 0.8, 0.8, 1},
		Specular:    Color{0.2, 0.2, 0.2, 1},
		Attenuation: Attenuation{Range: 1000, Constant: 0.9, Linear: 0.01, Quadratic: 0.001},
		Direction:   Vector3{-0.5, 0.1, -0.9},
	}
}

// DefaultPhysics is a 1 kHz ODE configuration running at real time.
func DefaultPhysics() *Physics {
	return &Physics{
		Name:               "default_physics",
		Default:            "0",
		Type:               "ode",
		MaxStepSize:        0.001,
		RealTimeFactor:     1,
		RealTimeUpdateRate: 1000,
	}
}

// WorldBuilder accumulates includes in visit order.
type WorldBuilder struct {
	doc WorldFile
}

// NewWorldBuilder starts a world. Empty version means DefaultVersion.
func NewWorldBuilder(name, version string) *WorldBuilder {
	if version == "" {
		version = DefaultVersion
	}
	return &WorldBuilder{doc: WorldFile{Version: version, World: World{Name: name}}}
}

// WithLight adds the default sun.
func (b *WorldBuilder) WithLight() *WorldBuilder {
	b.doc.World.Light = DefaultSun()
	return b
}

// WithPhysics adds gravity and the default physics block.
func (b *WorldBuilder) WithPhysics() *WorldBuilder {
	b.doc.World.Gravity = &Vector3{0, 0, -9.8}
	b.doc.World.Physics = DefaultPhysics()
	return b
}

// Include appends a model reference. pose may be nil.
func (b *WorldBuilder) Include(model string, pose *Pose) *WorldBuilder {
	b.doc.World.Includes = append(b.doc.World.Includes, Include{
		URI:  ModelURI(model),
		Name: model,
		Pose: pose,
	})
	return b
}

// Len returns the number of includes so far.
func (b *WorldBuilder) Len() int {
	return len(b.doc.World.Includes)
}

// Build returns the assembled document.
func (b *WorldBuilder) Build() WorldFile {
	return b.doc
}
