// Package render drives frames: it owns the shading mode, snapshots the inputs once per frame
// and issues one draw per model through a Device.
package render

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/envmap_viewer/scene"
)

type State int

const (
	Uninitialized State = iota
	Ready
	Rendering
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Rendering:
		return "rendering"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Device interface {
	Clear()
	Draw(program scene.Program, mesh string, u *scene.Uniforms) error
}

type YawSource interface {
	Yaw() float32
}

// Snapshot describes the last rendered frame.
type Snapshot struct {
	State          State             `json:"state"`
	Mode           scene.ShadingMode `json:"mode"`
	Yaw            float32           `json:"yaw"`
	Frames         uint64            `json:"frames"`
	CameraPosition mgl32.Vec3        `json:"camera_position"`
}

type Loop struct {
	// StateChanged is called on the render thread after every transition.
	StateChanged func(from, to State)

	ctx    *scene.Context
	models []scene.Model
	yaw    YawSource
	device Device

	mu     sync.Mutex
	state  State
	mode   scene.ShadingMode
	frames uint64
	last   Snapshot
}

func NewLoop(ctx *scene.Context, yaw YawSource) *Loop {
	return &Loop{
		ctx:    ctx,
		models: scene.Models(),
		yaw:    yaw,
		mode:   scene.ShadingReflect,
	}
}

// Prepare attaches the device once meshes are uploaded and programs compiled.
func (l *Loop) Prepare(device Device) error {
	if device == nil {
		return errors.New("nil device")
	}
	l.mu.Lock()
	if l.state != Uninitialized {
		state := l.state
		l.mu.Unlock()
		return errors.Errorf("prepare in %v state", state)
	}
	l.device = device
	l.mu.Unlock()

	l.transition(Ready)
	return nil
}

func (l *Loop) transition(to State) {
	l.mu.Lock()
	from := l.state
	l.state = to
	l.last.State = to
	l.mu.Unlock()

	if l.StateChanged != nil && from != to {
		l.StateChanged(from, to)
	}
}

// SwapShader flips the subject between reflection and refraction starting with the next frame.
// Safe to call from any goroutine.
func (l *Loop) SwapShader() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = l.mode.Toggle()
}

func (l *Loop) Mode() scene.ShadingMode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Frame renders the scene once. Errors from the device are returned as is;
// the caller is expected to stop scheduling frames.
func (l *Loop) Frame() error {
	l.mu.Lock()
	state := l.state
	mode := l.mode
	l.mu.Unlock()

	switch state {
	case Uninitialized:
		return errors.New("frame before the loop is prepared")
	case Ready:
		l.transition(Rendering)
	}

	ctx := l.ctx
	ctx.Mode = mode
	if l.yaw != nil {
		ctx.Yaw = l.yaw.Yaw()
	}

	l.device.Clear()
	for i := range l.models {
		m := &l.models[i]
		program := ctx.ProgramFor(m)
		ctx.Update()
		u := ctx.Uniforms(m)
		if err := l.device.Draw(program, m.Mesh, &u); err != nil {
			return errors.Wrapf(err, "draw %s", m.Name)
		}
	}

	l.mu.Lock()
	l.frames++
	l.last = Snapshot{
		State:          l.state,
		Mode:           mode,
		Yaw:            ctx.Yaw,
		Frames:         l.frames,
		CameraPosition: ctx.CameraPosition,
	}
	l.mu.Unlock()
	return nil
}
