package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms is everything a shader program receives for one draw call.
type Uniforms struct {
	Model          mgl32.Mat4
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	NormalMatrix   mgl32.Mat4
	CameraPosition mgl32.Vec3
	IORRatio       float32
}

// Context is the transform state of one viewer. It is owned by the render thread.
type Context struct {
	Yaw  float32
	Mode ShadingMode
	IOR  float32

	BoxTransform    mgl32.Mat4
	MonkeyTransform mgl32.Mat4
	View            mgl32.Mat4
	NormalMatrix    mgl32.Mat4
	CameraPosition  mgl32.Vec3

	projection mgl32.Mat4
}

// NewContext fixes the projection for the lifetime of the context from the drawable size.
func NewContext(width, height int, ior float32) *Context {
	c := &Context{
		IOR:        ior,
		projection: Projection(width, height),
	}
	c.Update()
	return c
}

func (c *Context) Projection() mgl32.Mat4 {
	return c.projection
}

// Update recomputes every derived value from the current yaw.
// The normal matrix always comes from the box transform.
func (c *Context) Update() {
	c.BoxTransform = mgl32.Scale3D(BoxScale, BoxScale, BoxScale)
	c.MonkeyTransform = mgl32.Scale3D(MonkeyScale, MonkeyScale, MonkeyScale)
	c.View = ViewTransform(c.Yaw)
	c.NormalMatrix = NormalMatrix(c.BoxTransform)
	c.CameraPosition = CameraPosition(c.View)
}

func (c *Context) ProgramFor(m *Model) Program {
	if m.Role == RoleBackdrop {
		return ProgramSkybox
	}
	return c.Mode.Program()
}

func (c *Context) Uniforms(m *Model) Uniforms {
	model := c.MonkeyTransform
	if m.Role == RoleBackdrop {
		model = c.BoxTransform
	}
	return Uniforms{
		Model:          model,
		View:           c.View,
		Projection:     c.projection,
		NormalMatrix:   c.NormalMatrix,
		CameraPosition: c.CameraPosition,
		IORRatio:       c.IOR,
	}
}

func Projection(width, height int) mgl32.Mat4 {
	aspect := float32(width) / float32(height)
	return mgl32.Perspective(mgl32.DegToRad(FieldOfView), aspect, NearPlane, FarPlane)
}

// ViewTransform moves the world back by CameraDistance, then spins it around Y by yaw radians.
func ViewTransform(yaw float32) mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, -CameraDistance).Mul4(mgl32.HomogRotate3DY(yaw))
}

func NormalMatrix(model mgl32.Mat4) mgl32.Mat4 {
	return model.Inv().Transpose()
}

func CameraPosition(view mgl32.Mat4) mgl32.Vec3 {
	return view.Inv().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
}
