package r3d

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/envmap_viewer/mesh"
)

// GPUMesh holds separate position, normal and index buffers of one mesh.
type GPUMesh struct {
	Name string

	glPositions uint32
	glNormals   uint32
	glIndices   uint32

	IndexCount int32
}

func UploadMesh(m *mesh.Mesh) *GPUMesh {
	gm := &GPUMesh{Name: m.Name, IndexCount: int32(len(m.Indices))}

	vecSize := int(unsafe.Sizeof(mgl32.Vec3{}))
	indexSize := int(unsafe.Sizeof(uint16(0)))

	gl.GenBuffers(1, &gm.glPositions)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.glPositions)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Positions)*vecSize, gl.Ptr(m.Positions), gl.STATIC_DRAW)

	gl.GenBuffers(1, &gm.glNormals)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.glNormals)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Normals)*vecSize, gl.Ptr(m.Normals), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.GenBuffers(1, &gm.glIndices)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.glIndices)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*indexSize, gl.Ptr(m.Indices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	return gm
}

// bind points the program attributes at this mesh and binds its index buffer.
func (gm *GPUMesh) bind(sp *ShaderProgram) {
	bindAttribute(sp.AVertexPosition, gm.glPositions)
	bindAttribute(sp.ANormalVector, gm.glNormals)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.glIndices)
}

func bindAttribute(location int32, buffer uint32) {
	if location < 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	gl.VertexAttribPointerWithOffset(uint32(location), 3, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(uint32(location))
}

func (gm *GPUMesh) Delete() {
	buffers := []uint32{gm.glPositions, gm.glNormals, gm.glIndices}
	gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
	gm.glPositions, gm.glNormals, gm.glIndices = 0, 0, 0
}
