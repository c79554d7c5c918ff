// Package viewer wires assets, the render loop and the window together.
package viewer

import (
	"context"
	"image/color"
	"log"
	"net/http"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/mogaika/envmap_viewer/config"
	"github.com/mogaika/envmap_viewer/cubemap"
	"github.com/mogaika/envmap_viewer/input"
	"github.com/mogaika/envmap_viewer/mesh"
	"github.com/mogaika/envmap_viewer/r3d"
	"github.com/mogaika/envmap_viewer/render"
	"github.com/mogaika/envmap_viewer/scene"
	"github.com/mogaika/envmap_viewer/status"
)

type Viewer struct {
	Config  *config.Config
	Meshes  map[string]*mesh.Mesh
	Cubemap *cubemap.Cubemap
	Scene   *scene.Context
	Loop    *render.Loop
	Drag    *input.Drag
	Status  *status.Hub
}

// New loads the meshes and prepares cpu side state. No GL calls are made.
func New(cfg *config.Config, hub *status.Hub) (*Viewer, error) {
	meshes, err := mesh.LoadAll(cfg.Meshes)
	if err != nil {
		return nil, errors.Wrap(err, "loading meshes")
	}
	for _, m := range scene.Models() {
		if _, ok := meshes[m.Mesh]; !ok {
			return nil, errors.Errorf("mesh %q for model %q is not configured", m.Mesh, m.Name)
		}
	}

	p := cfg.Skybox.Placeholder
	v := &Viewer{
		Config:  cfg,
		Meshes:  meshes,
		Cubemap: cubemap.New(cfg.Skybox.Size, color.RGBA{p[0], p[1], p[2], 0xff}),
		Scene:   scene.NewContext(cfg.Window.Width, cfg.Window.Height, cfg.IORRatio()),
		Drag:    &input.Drag{},
		Status:  hub,
	}
	v.Loop = render.NewLoop(v.Scene, v.Drag)
	v.Loop.StateChanged = func(from, to render.State) {
		log.Printf("[render] %v -> %v", from, to)
		if v.Status != nil {
			v.Status.Info("render state %v", to)
		}
	}
	return v, nil
}

// Run owns the window until it is closed or a frame fails. Must be called from the main thread.
func (v *Viewer) Run(ctx context.Context) error {
	window, err := openWindow(v.Config.Window)
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize OpenGL")
	}
	log.Printf("[viewer] OpenGL version %q", gl.GoStr(gl.GetString(gl.VERSION)))
	if v.Config.GLDebug {
		r3d.EnableDebugOutput()
	}

	programs, err := r3d.LoadShaderPrograms()
	if err != nil {
		return err
	}
	gpuMeshes := make(map[string]*r3d.GPUMesh, len(v.Meshes))
	for name, m := range v.Meshes {
		gpuMeshes[name] = r3d.UploadMesh(m)
	}
	texture := r3d.NewCubemapTexture(v.Cubemap)

	device := r3d.NewDevice(programs, gpuMeshes, texture)
	defer device.Delete()

	fbWidth, fbHeight := window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))

	if err := v.Loop.Prepare(device); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pump := v.startFaces(ctx, texture)

	v.bindInput(window)

	for !window.ShouldClose() {
		pump.drain()
		if err := v.Loop.Frame(); err != nil {
			log.Printf("[render] Stopping frames: %v", err)
			return errors.Wrap(err, "frame")
		}
		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

func (v *Viewer) startFaces(ctx context.Context, target faceUploader) *facePump {
	sky := v.Config.Skybox
	loader := &cubemap.Loader{
		Fetcher: cubemap.FetcherFor(sky.Base, &http.Client{Timeout: sky.Timeout}),
		Size:    sky.Size,
	}
	log.Printf("[cubemap] Loading faces from %q", sky.Base)
	results := loader.Start(ctx, cubemap.Sources(sky.Base, sky.Ext))
	bar := progressbar.Default(cubemap.FacesCount, "skybox faces")
	return newFacePump(results, v.Cubemap, target, v.Status, bar)
}
