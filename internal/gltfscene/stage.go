package gltfscene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/collision"
	"github.com/Faultbox/sdfexport/internal/logger"
)

// extrasKey holds applied schemas in a node's extras.
const extrasKey = "physics_apis"

// Stage is a collision.Stage that references glTF assets. Assets load in the
// background; Loaded reports completion.
type Stage struct {
	mu   sync.Mutex
	refs map[string]*reference
	wg   sync.WaitGroup
}

type reference struct {
	asset string
	done  bool
	err   error
	doc   *gltf.Document
	prims map[string]*Prim
}

var _ collision.LoadErrorer = (*Stage)(nil)

// NewStage returns an empty stage.
func NewStage() *Stage {
	return &Stage{refs: make(map[string]*reference)}
}

// AddReference implements collision.Stage.
func (s *Stage) AddReference(path, asset string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("prim path %q is not absolute", path)
	}
	if _, err := os.Stat(asset); err != nil {
		return err
	}
	ref := &reference{asset: asset}
	s.mu.Lock()
	if _, ok := s.refs[path]; ok {
		s.mu.Unlock()
		return fmt.Errorf("prim path %q already referenced", path)
	}
	s.refs[path] = ref
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		doc, err := gltf.Open(asset)
		var prims map[string]*Prim
		if err == nil {
			prims = buildPrims(doc, path)
		} else {
			logger.Error("failed to load reference",
				zap.String("asset", asset), zap.Error(err))
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		ref.doc, ref.prims, ref.err, ref.done = doc, prims, err, true
	}()
	return nil
}

// Loaded implements collision.Stage. A reference that failed to load counts
// as loaded; its prims are absent.
func (s *Stage) Loaded(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.refs[path]
	return ok && ref.done
}

// Err returns the load error of the reference at path.
func (s *Stage) Err(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.refs[path]; ok {
		return ref.err
	}
	return nil
}

// Prim implements collision.Stage.
func (s *Stage) Prim(path string) (collision.Prim, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range s.refs {
		if p, ok := ref.prims[path]; ok {
			return p, true
		}
	}
	return nil, false
}

// Close waits for pending loads.
func (s *Stage) Close() {
	s.wg.Wait()
}

// Save writes the document referenced at path, including applied schemas,
// to dest. A .glb extension selects the binary container.
func (s *Stage) Save(path, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.refs[path]
	if !ok || !ref.done {
		return fmt.Errorf("no loaded reference at %s", path)
	}
	if ref.err != nil {
		return ref.err
	}
	if strings.EqualFold(filepath.Ext(dest), ".glb") {
		return gltf.SaveBinary(ref.doc, dest)
	}
	return gltf.Save(ref.doc, dest)
}

// Prim is a stage node backed by a glTF node. The reference root has no node.
type Prim struct {
	path     string
	node     *gltf.Node
	children []*Prim
}

func (p *Prim) Path() string { return p.path }

// TypeName is Mesh for nodes carrying a mesh and Xform otherwise.
func (p *Prim) TypeName() string {
	if p.node != nil && p.node.Mesh != nil {
		return collision.MeshType
	}
	return "Xform"
}

// Children implements collision.Prim.
func (p *Prim) Children() []collision.Prim {
	out := make([]collision.Prim, len(p.children))
	for i, c := range p.children {
		out[i] = c
	}
	return out
}

var errNoNode = errors.New("reference root has no node")

// ApplyAPI records schemas in the node extras. Applying a schema twice is a
// no-op.
func (p *Prim) ApplyAPI(schemas ...string) error {
	if p.node == nil {
		return errNoNode
	}
	extras, ok := p.node.Extras.(map[string]any)
	if p.node.Extras != nil && !ok {
		return fmt.Errorf("node %s: extras are not an object", p.path)
	}
	if extras == nil {
		extras = make(map[string]any)
	}
	applied := toStrings(extras[extrasKey])
	for _, s := range schemas {
		if !contains(applied, s) {
			applied = append(applied, s)
		}
	}
	extras[extrasKey] = applied
	p.node.Extras = extras
	return nil
}

// APIs returns the schemas applied to the prim.
func (p *Prim) APIs() []string {
	if p.node == nil {
		return nil
	}
	extras, _ := p.node.Extras.(map[string]any)
	return toStrings(extras[extrasKey])
}

func toStrings(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, x := range vs {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// buildPrims mirrors the document's node hierarchy under root.
func buildPrims(doc *gltf.Document, root string) map[string]*Prim {
	prims := make(map[string]*Prim)
	top := &Prim{path: root}
	prims[root] = top

	var attach func(parent *Prim, nodes []int, visited map[int]bool)
	attach = func(parent *Prim, nodes []int, visited map[int]bool) {
		used := make(map[string]bool)
		for _, idx := range nodes {
			if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
				continue
			}
			visited[idx] = true
			seg := uniqueSegment(primSegment(nodeName(doc, idx)), used)
			p := &Prim{path: parent.path + "/" + seg, node: doc.Nodes[idx]}
			prims[p.path] = p
			parent.children = append(parent.children, p)
			attach(p, doc.Nodes[idx].Children, visited)
		}
	}
	attach(top, rootNodes(doc), make(map[int]bool))
	return prims
}

// primSegment maps a node name to a valid path identifier.
func primSegment(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || r == '_'):
			b.WriteRune(r)
		case r < unicode.MaxASCII && unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func uniqueSegment(seg string, used map[string]bool) string {
	candidate := seg
	for i := 1; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", seg, i)
	}
	used[candidate] = true
	return candidate
}
