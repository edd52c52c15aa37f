package exporter

import "go.uber.org/multierr"

// Texture is one image relocated into a model package.
type Texture struct {
	// Source is the original file path, or the image name for packed images.
	Source string
	Packed bool
	// Path is the written file.
	Path string
	// Rel is Path relative to the model directory, slash separated.
	Rel string
}

// ObjectResult records what happened to one mesh object.
type ObjectResult struct {
	Original string
	Name     string
	Exported bool
	Err      error
	Textures []Texture
	// Warnings are asset errors that did not prevent the export.
	Warnings []error
}

// Report summarizes a batch.
type Report struct {
	RunID     string
	WorldPath string
	Objects   []ObjectResult
}

// Exported returns the sanitized names of exported objects in visit order.
func (r *Report) Exported() []string {
	var names []string
	for _, o := range r.Objects {
		if o.Exported {
			names = append(names, o.Name)
		}
	}
	return names
}

// Skipped returns the results of objects excluded from the batch.
func (r *Report) Skipped() []ObjectResult {
	var out []ObjectResult
	for _, o := range r.Objects {
		if !o.Exported {
			out = append(out, o)
		}
	}
	return out
}

// TextureCount is the number of relocated textures across the batch.
func (r *Report) TextureCount() int {
	n := 0
	for _, o := range r.Objects {
		n += len(o.Textures)
	}
	return n
}

// Err combines every object and asset error of the batch, or nil.
func (r *Report) Err() error {
	var err error
	for _, o := range r.Objects {
		err = multierr.Append(err, o.Err)
		for _, w := range o.Warnings {
			err = multierr.Append(err, w)
		}
	}
	return err
}
