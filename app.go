package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chazu/feasible/pkg/engine"
	"github.com/chazu/feasible/pkg/geom"
	"github.com/chazu/feasible/pkg/kernel"
	"github.com/chazu/feasible/pkg/kernel/manifold"
	"github.com/chazu/feasible/pkg/kernel/sdfx"
	"github.com/chazu/feasible/pkg/polytope"
	"github.com/chazu/feasible/pkg/problem"
	"github.com/chazu/feasible/pkg/session"
	"github.com/chazu/feasible/pkg/tessellate"
)

// Event names emitted to the frontend.
const (
	EventResult = "result"
	EventBusy   = "busy"
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx     context.Context
	engine  *engine.Engine
	kernel  kernel.Kernel
	session *session.Session
	log     *slog.Logger

	mu     sync.Mutex
	volume bool
	emit   func(event string, data any)
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Lines    []float32 `json:"lines"`
	Label    string    `json:"label"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning for the
// frontend.
type EvalErrorData struct {
	Line         int    `json:"line"`
	Col          int    `json:"col"`
	Message      string `json:"message"`
	ConstraintID string `json:"constraintId,omitempty"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Generation uint64             `json:"generation"`
	Status     polytope.Status    `json:"status"`
	Problem    *problem.Problem   `json:"problem"`
	Vertices   []polytope.Vertex  `json:"vertices"`
	Faces      []polytope.Face    `json:"faces"`
	Optimum    *polytope.Optimum  `json:"optimum"`
	Skipped    []polytope.Skipped `json:"skipped"`
	Meshes     []MeshData         `json:"meshes"`
	Region     *MeshData          `json:"region,omitempty"`
	Volume     float64            `json:"volume"`
	Extent     float64            `json:"extent"`
	Errors     []EvalErrorData    `json:"errors"`
	Warnings   []EvalErrorData    `json:"warnings"`
}

// NewApp creates a new App with an engine, the sdfx kernel and a session
// on the default problem.
func NewApp() *App {
	return NewAppWithKernel(sdfx.New())
}

// NewAppWithKernel is NewApp with an explicit geometry kernel.
func NewAppWithKernel(k kernel.Kernel) *App {
	a := &App{
		engine: engine.NewEngine(),
		kernel: k,
		log:    polytope.Logger().With("component", "app"),
	}
	a.session = session.New(nil,
		session.WithPublisher(a.publish),
		session.WithBusyListener(a.busyChanged))
	return a
}

// Kernel names accepted by newKernel.
const (
	KernelSdfx     = "sdfx"
	KernelManifold = "manifold"
)

// newKernel returns the named geometry kernel. cells sets the sdfx meshing
// resolution; manifold trims exactly and ignores it.
func newKernel(name string, cells int) (kernel.Kernel, error) {
	switch name {
	case "", KernelSdfx:
		return sdfx.NewWithCells(cells), nil
	case KernelManifold:
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel %q (want %s or %s)", name, KernelSdfx, KernelManifold)
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(ctx context.Context) {
	a.session.Close()
}

// SetEmitter installs the function used to push events to the frontend.
func (a *App) SetEmitter(fn func(event string, data any)) {
	a.mu.Lock()
	a.emit = fn
	a.mu.Unlock()
}

func (a *App) emitter() func(string, any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.emit
}

func (a *App) publish(snap session.Snapshot) {
	if emit := a.emitter(); emit != nil {
		emit(EventResult, a.toResult(snap))
	}
}

// busyChanged runs with the session lock held; it must not call session
// methods.
func (a *App) busyChanged(busy bool) {
	if emit := a.emitter(); emit != nil {
		emit(EventBusy, busy)
	}
}

// Evaluate takes a problem script, loads the problem it defines into the
// session and returns the computed result. On script errors the session
// keeps its previous problem.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	// Step 1: Evaluate the script into a problem.
	p, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate fatal error", "err", err)
		return errorResult(EvalErrorData{Message: err.Error()})
	}

	// Step 2: Convert eval errors to the frontend format.
	if len(evalErrs) > 0 {
		data := make([]EvalErrorData, len(evalErrs))
		for i, e := range evalErrs {
			data[i] = EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		}
		return errorResult(data...)
	}

	// Step 3: Swap the problem into the session and compute.
	snap, err := a.session.Load(p)
	if err != nil {
		return errorResult(EvalErrorData{Message: err.Error()})
	}
	return a.toResult(snap)
}

// Current returns the latest computed result.
func (a *App) Current() EvalResult {
	return a.toResult(a.session.Latest())
}

// Script renders the current problem as a script.
func (a *App) Script() string {
	return engine.Script(a.session.Problem())
}

// IsBusy reports whether an edit is waiting for recomputation.
func (a *App) IsBusy() bool {
	return a.session.Busy()
}

// SetVolume turns region meshing through the geometry kernel on or off and
// returns the current result rendered with the new setting.
func (a *App) SetVolume(on bool) EvalResult {
	a.mu.Lock()
	a.volume = on
	a.mu.Unlock()
	return a.Current()
}

// FocusOnVertex returns the camera position that frames vertex i of the
// latest result.
func (a *App) FocusOnVertex(i int) (geom.Point3, error) {
	res := a.session.Latest().Result
	if i < 0 || i >= len(res.Vertices) {
		return geom.Point3{}, fmt.Errorf("vertex %d out of range [0, %d)", i, len(res.Vertices))
	}
	return polytope.FocusPosition(res.Vertices[i].Point3), nil
}

// ---------------------------------------------------------------------------
// Edit bindings. Results arrive through the "result" event once the
// debounce timer fires.
// ---------------------------------------------------------------------------

// AddConstraint appends a constraint and returns its id.
func (a *App) AddConstraint(expression, color string) (string, error) {
	c, err := a.session.AddConstraint(expression, color)
	if err != nil {
		return "", err
	}
	return string(c.ID), nil
}

// SetExpression replaces the text of a constraint.
func (a *App) SetExpression(id, expression string) error {
	return a.session.SetExpression(problem.ConstraintID(id), expression)
}

// SetColor changes the display color of a constraint.
func (a *App) SetColor(id, color string) error {
	return a.session.SetColor(problem.ConstraintID(id), color)
}

// SetEnabled toggles a constraint.
func (a *App) SetEnabled(id string, enabled bool) error {
	return a.session.SetEnabled(problem.ConstraintID(id), enabled)
}

// RemoveConstraint deletes a constraint.
func (a *App) RemoveConstraint(id string) error {
	return a.session.RemoveConstraint(problem.ConstraintID(id))
}

// SetRange changes the range box.
func (a *App) SetRange(min, max float64) error {
	return a.session.SetRange(min, max)
}

// SetObjective changes the objective expression.
func (a *App) SetObjective(expression string) error {
	return a.session.SetObjective(expression)
}

// SetDirection changes the optimization direction ("max" or "min").
func (a *App) SetDirection(direction string) error {
	d, err := problem.ParseDirection(direction)
	if err != nil {
		return err
	}
	return a.session.SetDirection(d)
}

// ---------------------------------------------------------------------------
// Result conversion
// ---------------------------------------------------------------------------

func errorResult(errs ...EvalErrorData) EvalResult {
	r := emptyResult()
	r.Errors = append(r.Errors, errs...)
	return r
}

// emptyResult has non-nil slices so JSON serializes them as [] not null.
func emptyResult() EvalResult {
	return EvalResult{
		Vertices: []polytope.Vertex{},
		Faces:    []polytope.Face{},
		Skipped:  []polytope.Skipped{},
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

func (a *App) toResult(snap session.Snapshot) EvalResult {
	r := emptyResult()
	r.Generation = snap.Generation
	r.Problem = snap.Problem
	r.Status = snap.Result.Status
	r.Optimum = snap.Result.Optimum
	r.Extent = snap.Result.Extent
	r.Vertices = append(r.Vertices, snap.Result.Vertices...)
	r.Faces = append(r.Faces, snap.Result.Faces...)
	r.Skipped = append(r.Skipped, snap.Result.Skipped...)

	for _, m := range tessellate.Faces(snap.Result) {
		r.Meshes = append(r.Meshes, meshData(m))
	}

	if snap.Problem != nil {
		for _, w := range engine.Warnings(snap.Problem) {
			r.Warnings = append(r.Warnings, EvalErrorData{
				Line:         w.Line,
				Col:          w.Col,
				Message:      w.Message,
				ConstraintID: string(w.ConstraintID),
			})
		}
	}

	a.mu.Lock()
	volume := a.volume
	a.mu.Unlock()
	if volume && snap.Problem != nil && !snap.Result.Empty() {
		region, err := tessellate.Region(snap.Result, snap.Problem.Range, a.kernel)
		if err != nil {
			a.log.Warn("region meshing failed", "err", err)
			r.Warnings = append(r.Warnings, EvalErrorData{Message: "region meshing failed: " + err.Error()})
		} else {
			md := meshData(region)
			r.Region = &md
			r.Volume = region.Volume()
		}
	}
	return r
}

func meshData(m *kernel.Mesh) MeshData {
	return MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		Indices:  m.Indices,
		Lines:    m.Lines,
		Label:    m.Label,
		Color:    m.Color,
	}
}
