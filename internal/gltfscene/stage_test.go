package gltfscene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/sdfexport/internal/collision"
	"github.com/Faultbox/sdfexport/internal/exporter"
	"github.com/Faultbox/sdfexport/internal/host"
)

func writeGLB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "house.glb")
	if err := gltf.SaveBinary(testDoc(t, dir), path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStageCollisionTagging(t *testing.T) {
	asset := writeGLB(t)
	stage := NewStage()
	defer stage.Close()

	tagger := collision.NewTagger(collision.Options{
		PrimPath:     "/World/house",
		PollInterval: time.Millisecond,
		LoadTimeout:  5 * time.Second,
	})
	tagged, err := tagger.Run(context.Background(), stage, asset)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := "/World/house/Wall_A,/World/house/Wall_A/Trim"
	if got := strings.Join(tagged, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	p, ok := stage.Prim("/World/house/Wall_A")
	if !ok {
		t.Fatal("expected Wall_A prim")
	}
	apis := p.(*Prim).APIs()
	if len(apis) != 2 || apis[0] != collision.SchemaCollision || apis[1] != collision.SchemaPhysxCollision {
		t.Errorf("unexpected apis %v", apis)
	}
	lamp, _ := stage.Prim("/World/house/Lamp")
	if lamp.TypeName() != "Xform" || len(lamp.(*Prim).APIs()) != 0 {
		t.Error("lamp should be an untagged Xform")
	}

	out := filepath.Join(t.TempDir(), "tagged.glb")
	if err := stage.Save("/World/house", out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	doc, err := gltf.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Nodes[0].Extras == nil {
		t.Error("expected schemas persisted in node extras")
	}
}

func TestStageApplyIsIdempotent(t *testing.T) {
	p := &Prim{path: "/a", node: &gltf.Node{}}
	p.ApplyAPI(collision.SchemaCollision)
	p.ApplyAPI(collision.SchemaCollision, collision.SchemaPhysxCollision)
	if got := p.APIs(); len(got) != 2 {
		t.Errorf("expected 2 apis, got %v", got)
	}
	root := &Prim{path: "/a"}
	if err := root.ApplyAPI(collision.SchemaCollision); err == nil {
		t.Error("expected error on reference root")
	}
}

func TestStageMissingAsset(t *testing.T) {
	stage := NewStage()
	if err := stage.AddReference("/World/house", filepath.Join(t.TempDir(), "none.glb")); err == nil {
		t.Error("expected error for missing asset")
	}
	if err := stage.AddReference("World", writeGLB(t)); err == nil {
		t.Error("expected error for relative prim path")
	}
}

func TestStageBrokenAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.glb")
	os.WriteFile(path, []byte("garbage"), 0644)

	stage := NewStage()
	if err := stage.AddReference("/World/house", path); err != nil {
		t.Fatal(err)
	}
	stage.Close()
	if !stage.Loaded("/World/house") {
		t.Error("failed load should count as loaded")
	}
	if stage.Err("/World/house") == nil {
		t.Error("expected load error")
	}
	if _, ok := stage.Prim("/World/house"); ok {
		t.Error("expected no prims for a failed load")
	}

	tagger := collision.NewTagger(collision.Options{PrimPath: "/World/broken", PollInterval: time.Millisecond})
	_, err := tagger.Run(context.Background(), stage, path)
	if err == nil || errors.Is(err, collision.ErrPrimNotFound) {
		t.Errorf("expected the decode error, got %v", err)
	}
}

func TestPrimSegment(t *testing.T) {
	tests := map[string]string{
		"Wall_A":   "Wall_A",
		"wall 2":   "wall_2",
		"3d-model": "_3d_model",
		"":         "_",
		"Ångström": "_ngstr_m",
	}
	for in, want := range tests {
		if got := primSegment(in); got != want {
			t.Errorf("primSegment(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestExporterOverGLTF(t *testing.T) {
	s, _ := testScene(t)
	root := t.TempDir()
	e := exporter.New(exporter.Options{
		OutputRoot: root,
		WorldName:  "house",
		Format:     host.FormatOBJ,
		Light:      true,
		Physics:    true,
	}, nil)

	report, err := e.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := strings.Join(report.Exported(), ","); got != "Wall_A,Trim" {
		t.Fatalf("expected Wall_A,Trim exported, got %s", got)
	}

	wall := object(t, s, "Wall_A")
	if wall.Orientation() != host.IdentityOrientation {
		t.Errorf("expected orientation restored, got %v", wall.Orientation())
	}
	if s.Editor().Mode() != host.ModeObject {
		t.Error("expected object mode after export")
	}

	dir := filepath.Join(root, "Wall_A")
	for _, f := range []string{
		"meshes/Wall_A.obj",
		"meshes/Wall_A.mtl",
		"materials/textures/brick.png",
		"materials/textures/image_1.png",
		"materials/scripts/Wall_A.material",
		"model.sdf",
		"model.config",
	} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(f))); err != nil {
			t.Errorf("expected %s: %v", f, err)
		}
	}
	mtl, _ := os.ReadFile(filepath.Join(dir, "meshes", "Wall_A.mtl"))
	if !strings.Contains(string(mtl), "map_Kd ../materials/textures/brick.png") {
		t.Errorf("expected relocated map_Kd:\n%s", mtl)
	}
	if strings.Contains(string(mtl), "illum") {
		t.Errorf("expected cleaned mtl:\n%s", mtl)
	}
	if p := wall.materials[0].nodes[0].Path(); !filepath.IsAbs(p) {
		t.Errorf("expected node path restored to the source file, got %q", p)
	}
}
