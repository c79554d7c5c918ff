package r3d

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"

	"github.com/mogaika/envmap_viewer/scene"
)

// Device draws scene models with OpenGL. It must only be used on the thread owning the context.
type Device struct {
	Programs map[scene.Program]*ShaderProgram
	Meshes   map[string]*GPUMesh
	Cubemap  *CubemapTexture

	glVAO uint32
}

func NewDevice(programs map[scene.Program]*ShaderProgram, meshes map[string]*GPUMesh, cm *CubemapTexture) *Device {
	d := &Device{Programs: programs, Meshes: meshes, Cubemap: cm}
	// core profile refuses attribute setup without a bound vertex array
	gl.GenVertexArrays(1, &d.glVAO)
	gl.BindVertexArray(d.glVAO)
	return d
}

func (d *Device) Clear() {
	gl.ClearColor(1.0, 1.0, 1.0, 1.0)
	gl.ClearDepth(1.0)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) Draw(program scene.Program, meshName string, u *scene.Uniforms) error {
	sp, ok := d.Programs[program]
	if !ok {
		return errors.Errorf("no %v program", program)
	}
	gm, ok := d.Meshes[meshName]
	if !ok {
		return errors.Errorf("no gpu mesh %q", meshName)
	}

	gl.UseProgram(sp.Id)

	gl.Uniform1f(sp.UIORRatio, u.IORRatio)
	gl.UniformMatrix4fv(sp.UModelTransform, 1, false, &u.Model[0])
	gl.UniformMatrix4fv(sp.UViewTransform, 1, false, &u.View[0])
	gl.UniformMatrix4fv(sp.UProjectionTransform, 1, false, &u.Projection[0])
	gl.UniformMatrix4fv(sp.UNormalMatrix, 1, false, &u.NormalMatrix[0])
	gl.Uniform3fv(sp.UCameraPosition, 1, &u.CameraPosition[0])

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, d.Cubemap.Id)
	gl.Uniform1i(sp.USkybox, 0)

	gl.BindVertexArray(d.glVAO)
	gm.bind(sp)
	gl.DrawElements(gl.TRIANGLES, gm.IndexCount, gl.UNSIGNED_SHORT, unsafe.Pointer(nil))

	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Errorf("drawing %q with %v program: gl error 0x%x", meshName, program, code)
	}
	return nil
}

func (d *Device) Delete() {
	for _, gm := range d.Meshes {
		gm.Delete()
	}
	for _, sp := range d.Programs {
		sp.Delete()
	}
	d.Cubemap.Delete()
	gl.DeleteVertexArrays(1, &d.glVAO)
}
