// Package collision enables physics collision on every mesh prim below a
// referenced asset in a simulation stage.
package collision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/logger"
)

// Schema tags applied together to each mesh prim.
const (
	SchemaCollision      = "PhysicsCollisionAPI"
	SchemaPhysxCollision = "PhysxCollisionAPI"
)

// MeshType is the prim type name that receives collision.
const MeshType = "Mesh"

// ErrPrimNotFound is returned when the referenced prim is missing or invalid
// after loading.
var ErrPrimNotFound = errors.New("prim not found")

// Stage is the scene graph of the simulation platform.
type Stage interface {
	// AddReference starts loading asset under path. Loading may finish
	// after the call returns.
	AddReference(path, asset string) error
	// Loaded reports whether the reference at path has finished loading.
	Loaded(path string) bool
	Prim(path string) (Prim, bool)
}

// LoadErrorer is implemented by stages that keep the error of a failed
// load. A failed reference still reports Loaded.
type LoadErrorer interface {
	Err(path string) error
}

// Prim is a node of the stage.
type Prim interface {
	Path() string
	TypeName() string
	Children() []Prim
	ApplyAPI(schemas ...string) error
}

// WaitLoaded polls stage until the reference at path reports loaded or ctx is
// done.
func WaitLoaded(ctx context.Context, stage Stage, path string, interval time.Duration) error {
	if stage.Loaded(path) {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", path, ctx.Err())
		case <-ticker.C:
			if stage.Loaded(path) {
				return nil
			}
		}
	}
}

// Walk visits every descendant of root once, depth first, parents before
// children. root itself is not visited.
func Walk(root Prim, fn func(Prim) error) error {
	for _, child := range root.Children() {
		if err := fn(child); err != nil {
			return err
		}
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// Options configure a Tagger.
type Options struct {
	PrimPath     string
	PollInterval time.Duration
	LoadTimeout  time.Duration
}

// Tagger references an asset into a stage and tags its meshes.
type Tagger struct {
	opts Options
}

// NewTagger returns a Tagger, filling zero options with defaults.
func NewTagger(opts Options) *Tagger {
	if opts.PrimPath == "" {
		opts.PrimPath = "/World/house"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 30 * time.Second
	}
	return &Tagger{opts: opts}
}

// Run adds asset under the configured prim path, waits for it to load and
// applies both collision schemas to every mesh prim. It returns the paths of
// the tagged prims in visit order.
func (t *Tagger) Run(ctx context.Context, stage Stage, asset string) ([]string, error) {
	path := t.opts.PrimPath
	if err := stage.AddReference(path, asset); err != nil {
		return nil, fmt.Errorf("add reference %s: %w", asset, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, t.opts.LoadTimeout)
	defer cancel()
	if err := WaitLoaded(waitCtx, stage, path, t.opts.PollInterval); err != nil {
		return nil, err
	}

	if le, ok := stage.(LoadErrorer); ok {
		if err := le.Err(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", asset, err)
		}
	}

	root, ok := stage.Prim(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}

	var tagged []string
	err := Walk(root, func(p Prim) error {
		if p.TypeName() != MeshType {
			return nil
		}
		if err := p.ApplyAPI(SchemaCollision, SchemaPhysxCollision); err != nil {
			return fmt.Errorf("apply collision to %s: %w", p.Path(), err)
		}
		tagged = append(tagged, p.Path())
		logger.Info("collision enabled", zap.String("prim", p.Path()))
		return nil
	})
	return tagged, err
}
