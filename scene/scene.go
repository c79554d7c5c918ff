// Package scene holds the per-frame transform state of the viewer: model, view and projection
// matrices, the normal matrix and the camera position, plus the shading mode selecting how the
// monkey is drawn.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	FieldOfView = 45.0 // degrees, vertical
	NearPlane   = 0.1
	FarPlane    = 100.0

	CameraDistance = 3.0

	BoxScale    = 10.0
	MonkeyScale = 0.8
)

// Refraction ratios from air into the medium.
const (
	IORWater   float32 = 1 / 1.33
	IORDiamond float32 = 1 / 2.417
)

type Program int

const (
	ProgramSkybox Program = iota
	ProgramReflect
	ProgramRefract
)

var programNames = [...]string{
	ProgramSkybox:  "skybox",
	ProgramReflect: "reflect",
	ProgramRefract: "refract",
}

func (p Program) String() string {
	if p < 0 || int(p) >= len(programNames) {
		return fmt.Sprintf("program(%d)", int(p))
	}
	return programNames[p]
}

type ShadingMode int

const (
	ShadingReflect ShadingMode = iota
	ShadingRefract
)

func (m ShadingMode) Toggle() ShadingMode {
	if m == ShadingReflect {
		return ShadingRefract
	}
	return ShadingReflect
}

func (m ShadingMode) Program() Program {
	if m == ShadingRefract {
		return ProgramRefract
	}
	return ProgramReflect
}

func (m ShadingMode) String() string {
	return m.Program().String()
}

func (m ShadingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

type Role int

const (
	RoleBackdrop Role = iota
	RoleSubject
)

// Model binds a mesh to the way it is shaded. The subject follows the shading mode,
// the backdrop is always drawn with the skybox program.
type Model struct {
	Name  string
	Mesh  string
	Scale float32
	Role  Role
}

func (m *Model) Transform() mgl32.Mat4 {
	return mgl32.Scale3D(m.Scale, m.Scale, m.Scale)
}

// Models returns the scene in draw order.
func Models() []Model {
	return []Model{
		{Name: "box", Mesh: "box", Scale: BoxScale, Role: RoleBackdrop},
		{Name: "monkey", Mesh: "monkey", Scale: MonkeyScale, Role: RoleSubject},
	}
}
