// Package exporter turns the mesh objects of a host scene into Gazebo model
// packages and one world file that includes them.
//
// Objects are processed one at a time in scene order. A failing object is
// logged and left out of the world; only an unusable output root or an
// unwritable world file abort the batch.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/host"
	"github.com/Faultbox/sdfexport/internal/logger"
	"github.com/Faultbox/sdfexport/pkg/sdf"
)

// ReorientX converts the authoring Z-up convention to the simulator frame:
// -90 degrees about X.
var ReorientX = host.AxisAngle([3]float64{1, 0, 0}, -math.Pi/2)

// Options configure a batch.
type Options struct {
	OutputRoot string
	// WorldDir receives <WorldName>.world. Defaults to OutputRoot.
	WorldDir    string
	WorldName   string
	Format      host.MeshFormat
	SDFVersion  string
	Author      sdf.Author
	IncludePose bool
	Light       bool
	Physics     bool
	// RunID tags logs and the report. Generated when empty.
	RunID string
}

// Observer receives batch events. Implementations must not block.
type Observer interface {
	ObjectExported(name string)
	ObjectSkipped(name string, stage Stage)
	TextureExported(name string)
	AssetFailed(name string, stage Stage)
}

type nopObserver struct{}

func (nopObserver) ObjectExported(string)       {}
func (nopObserver) ObjectSkipped(string, Stage) {}
func (nopObserver) TextureExported(string)      {}
func (nopObserver) AssetFailed(string, Stage)   {}

// Exporter runs batches with fixed options.
type Exporter struct {
	opts Options
	obs  Observer
	log  *zap.Logger
}

// New creates an exporter. obs may be nil.
func New(opts Options, obs Observer) *Exporter {
	if opts.WorldDir == "" {
		opts.WorldDir = opts.OutputRoot
	}
	if opts.WorldName == "" {
		opts.WorldName = "scene"
	}
	if opts.SDFVersion == "" {
		opts.SDFVersion = sdf.DefaultVersion
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Exporter{opts: opts, obs: obs, log: logger.Log}
}

// WorldPath is where Run writes the world file.
func (e *Exporter) WorldPath() string {
	return filepath.Join(e.opts.WorldDir, e.opts.WorldName+".world")
}

// Run exports every mesh object of scene. The returned error is non-nil only
// for batch-level failures and cancellation; per-object failures are
// reported in the Report. A cancelled batch writes no world file.
func (e *Exporter) Run(ctx context.Context, scene host.Scene) (*Report, error) {
	report := &Report{RunID: e.opts.RunID}
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}
	log := e.log.With(zap.String("run", report.RunID))

	if err := os.MkdirAll(e.opts.OutputRoot, 0755); err != nil {
		return report, &FatalError{Op: "create output root", Err: err}
	}
	if err := host.EnsureObjectMode(scene.Editor()); err != nil {
		return report, &FatalError{Op: "enter object mode", Err: err}
	}

	names := sdf.NewNameSet()
	world := sdf.NewWorldBuilder(e.opts.WorldName, e.opts.SDFVersion)
	if e.opts.Light {
		world.WithLight()
	}
	if e.opts.Physics {
		world.WithPhysics()
	}

	for _, obj := range scene.Objects() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if obj.Kind() != host.KindMesh {
			log.Debug("skipping non-mesh object",
				zap.String("object", obj.Name()),
				zap.Stringer("kind", obj.Kind()))
			continue
		}

		res := e.exportObject(log, scene, obj, names)
		report.Objects = append(report.Objects, res)
		for _, w := range res.Warnings {
			var ae *AssetError
			if errors.As(w, &ae) {
				e.obs.AssetFailed(res.Name, ae.Stage)
			}
		}
		if res.Err != nil {
			stage := StageValidate
			var oe *ObjectError
			if errors.As(res.Err, &oe) {
				stage = oe.Stage
			}
			log.Warn("object skipped",
				zap.String("object", res.Original),
				zap.String("stage", string(stage)),
				zap.Error(res.Err))
			e.obs.ObjectSkipped(res.Original, stage)
			continue
		}

		var pose *sdf.Pose
		if e.opts.IncludePose {
			loc := obj.Location()
			pose = &sdf.Pose{loc[0], loc[1], loc[2], 0, 0, 0}
		}
		world.Include(res.Name, pose)
		for range res.Textures {
			e.obs.TextureExported(res.Name)
		}
		e.obs.ObjectExported(res.Name)
		log.Info("object exported",
			zap.String("object", res.Name),
			zap.Int("textures", len(res.Textures)))
	}

	if err := os.MkdirAll(e.opts.WorldDir, 0755); err != nil {
		return report, &FatalError{Op: "create world directory", Err: err}
	}
	path := e.WorldPath()
	if err := sdf.WriteFile(path, world.Build()); err != nil {
		return report, &FatalError{Op: "write world", Err: err}
	}
	report.WorldPath = path

	root, err := filepath.Abs(e.opts.OutputRoot)
	if err != nil {
		root = e.opts.OutputRoot
	}
	log.Info("world written",
		zap.String("path", path),
		zap.Int("exported", world.Len()),
		zap.Int("skipped", len(report.Skipped())))
	log.Info("add the output root to the simulator model path",
		zap.String("env", "GAZEBO_MODEL_PATH=$GAZEBO_MODEL_PATH:"+root))
	return report, nil
}

// exportObject runs the per-object pipeline. Any failure leaves no model
// directory behind unless the directory predates this run.
func (e *Exporter) exportObject(log *zap.Logger, scene host.Scene, obj host.Object, names *sdf.NameSet) (res ObjectResult) {
	res.Original = obj.Name()
	if obj.FaceCount() == 0 {
		res.Err = &ObjectError{Object: res.Original, Stage: StageValidate, Err: ErrNoFaces}
		return res
	}
	name, err := names.Claim(res.Original)
	if err != nil {
		res.Err = &ObjectError{Object: res.Original, Stage: StageName, Err: err}
		return res
	}
	res.Name = name
	job := newJob(e.opts.OutputRoot, obj, name, e.opts.Format)

	_, statErr := os.Stat(job.Dir)
	created := os.IsNotExist(statErr)

	restoreGeometry := func() {}
	defer func() {
		if res.Err == nil {
			return
		}
		restoreGeometry()
		names.Release(res.Original)
		if created {
			if err := os.RemoveAll(job.Dir); err != nil {
				log.Warn("failed to remove partial model directory",
					zap.String("dir", job.Dir), zap.Error(err))
			}
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			res.Err = &ObjectError{Object: res.Original, Stage: StageMesh, Err: fmt.Errorf("host panic: %v", r)}
		}
	}()

	if err := os.MkdirAll(filepath.Join(job.Dir, MeshesDir), 0755); err != nil {
		res.Err = &ObjectError{Object: name, Stage: StageMesh, Err: err}
		return res
	}
	if err := scene.Select(obj); err != nil {
		res.Err = &ObjectError{Object: name, Stage: StageNormalize, Err: fmt.Errorf("select: %w", err)}
		return res
	}

	ed := scene.Editor()
	restore, err := ed.Snapshot(obj)
	switch {
	case err == nil:
		restoreGeometry = restore
	case errors.Is(err, host.ErrUnsupported):
		log.Debug("host cannot snapshot geometry", zap.String("object", name))
	default:
		res.Err = &ObjectError{Object: name, Stage: StageNormalize, Err: fmt.Errorf("snapshot: %w", err)}
		return res
	}

	if err := e.emitMesh(log, scene, job); err != nil {
		res.Err = err
		return res
	}

	var material *sdf.Material
	if job.Format.CarriesMaterials() {
		h := newHarvester(log, scene, job)
		defer h.restore()
		h.run()
		res.Textures = h.textures
		res.Warnings = append(res.Warnings, h.warnings...)

		if err := h.cleanMTL(); err != nil {
			res.Warnings = append(res.Warnings, err)
		}
		if len(res.Textures) > 0 {
			if err := writeScript(job, res.Textures[0]); err != nil {
				res.Warnings = append(res.Warnings, &AssetError{
					Object: name, Asset: job.ScriptPath(), Stage: StageScript, Err: err,
				})
			} else {
				material = sdf.NewMaterial(name, ScriptsDir, TexturesDir)
			}
		}
	}
	for _, w := range res.Warnings {
		log.Warn("asset skipped", zap.String("object", name), zap.Error(w))
	}

	if err := e.writeDescriptors(job, material); err != nil {
		res.Err = &ObjectError{Object: name, Stage: StageDescriptor, Err: err}
		return res
	}
	res.Exported = true
	return res
}

// emitMesh normalizes the geometry and writes the mesh with the object
// temporarily reoriented. The orientation is restored on every path.
func (e *Exporter) emitMesh(log *zap.Logger, scene host.Scene, job *Job) error {
	obj := job.Object
	saved := obj.Orientation()
	defer obj.SetOrientation(saved)

	if err := normalize(log, scene.Editor(), obj); err != nil {
		return &ObjectError{Object: job.Name, Stage: StageNormalize, Err: err}
	}

	obj.SetOrientation(ReorientX)
	path := job.MeshPath()
	opts := host.ExportOptions{SelectedOnly: true, LocalOrigin: e.opts.IncludePose}
	if err := scene.ExportMesh(job.Format, path, opts); err != nil {
		return &ObjectError{Object: job.Name, Stage: StageMesh, Err: err}
	}
	if _, err := os.Stat(path); err != nil {
		return &ObjectError{Object: job.Name, Stage: StageMesh, Err: ErrMeshMissing}
	}
	return nil
}

func normalize(log *zap.Logger, ed host.Editor, obj host.Object) (err error) {
	scope, err := host.EnterEdit(ed)
	if err != nil {
		return err
	}
	defer func() {
		if exitErr := scope.Exit(); exitErr != nil && err == nil {
			err = exitErr
		}
	}()

	if err := ed.Triangulate(obj); err != nil {
		return fmt.Errorf("triangulate: %w", err)
	}
	if err := ed.DeleteLoose(obj); err != nil {
		return fmt.Errorf("delete loose: %w", err)
	}
	if err := ed.FillHoles(obj); err != nil {
		if !errors.Is(err, host.ErrUnsupported) {
			return fmt.Errorf("fill holes: %w", err)
		}
		log.Debug("hole filling not supported by host", zap.String("object", obj.Name()))
	}
	return nil
}

func (e *Exporter) writeDescriptors(job *Job, material *sdf.Material) error {
	model := sdf.NewModel(job.Name, e.opts.SDFVersion, job.MeshURI(), material)
	if err := sdf.WriteFile(filepath.Join(job.Dir, sdf.ModelFileName), model); err != nil {
		return fmt.Errorf("write %s: %w", sdf.ModelFileName, err)
	}
	cfg := sdf.NewModelConfig(job.Name, e.opts.SDFVersion, e.opts.Author)
	if err := sdf.WriteFile(filepath.Join(job.Dir, sdf.ConfigFileName), cfg); err != nil {
		return fmt.Errorf("write %s: %w", sdf.ConfigFileName, err)
	}
	return nil
}

func writeScript(job *Job, tex Texture) error {
	if err := os.MkdirAll(filepath.Dir(job.ScriptPath()), 0755); err != nil {
		return err
	}
	f, err := os.Create(job.ScriptPath())
	if err != nil {
		return err
	}
	if err := sdf.WriteMaterialScript(f, job.Name, filepath.Base(tex.Path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
