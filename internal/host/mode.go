package host

import (
	"errors"
	"fmt"
)

// Mode is the interaction mode of the host.
type Mode int

const (
	ModeObject Mode = iota
	ModeEditGeometry
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	if m == ModeEditGeometry {
		return "edit"
	}
	return "object"
}

// ErrInvalidTransition is returned for mode changes the state machine forbids.
var ErrInvalidTransition = errors.New("invalid mode transition")

// CheckTransition validates a mode change. Only Object <-> EditGeometry is
// allowed; staying in the same mode is rejected so that unbalanced
// enter/exit pairs are caught.
func CheckTransition(from, to Mode) error {
	if from == to {
		return fmt.Errorf("%w: already in %s mode", ErrInvalidTransition, from)
	}
	return nil
}

// Editor performs geometry edits on the selected object.
type Editor interface {
	Mode() Mode
	SetMode(m Mode) error
	// Triangulate converts every face of obj to triangles.
	Triangulate(obj Object) error
	// DeleteLoose removes vertices and edges not used by any face.
	DeleteLoose(obj Object) error
	// FillHoles closes open boundary loops. Hosts may return ErrUnsupported.
	FillHoles(obj Object) error
	// Snapshot captures obj's geometry; the returned restore func puts it back.
	Snapshot(obj Object) (restore func(), err error)
}

// EditScope is an active EditGeometry session. Exit returns the host to the
// mode it was in before Enter; it is safe to call more than once.
type EditScope struct {
	ed     Editor
	prev   Mode
	active bool
}

// EnterEdit switches ed into EditGeometry mode.
func EnterEdit(ed Editor) (*EditScope, error) {
	prev := ed.Mode()
	if err := CheckTransition(prev, ModeEditGeometry); err != nil {
		return nil, err
	}
	if err := ed.SetMode(ModeEditGeometry); err != nil {
		return nil, fmt.Errorf("entering edit mode: %w", err)
	}
	return &EditScope{ed: ed, prev: prev, active: true}, nil
}

// Exit leaves EditGeometry mode.
func (s *EditScope) Exit() error {
	if s == nil || !s.active {
		return nil
	}
	s.active = false
	if err := s.ed.SetMode(s.prev); err != nil {
		return fmt.Errorf("leaving edit mode: %w", err)
	}
	return nil
}

// EnsureObjectMode puts ed into Object mode if it is not already there.
func EnsureObjectMode(ed Editor) error {
	if ed.Mode() == ModeObject {
		return nil
	}
	return ed.SetMode(ModeObject)
}
