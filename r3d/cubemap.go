package r3d

import (
	"image"
	"runtime"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"

	"github.com/mogaika/envmap_viewer/cubemap"
)

type CubemapTexture struct {
	Id   uint32
	Size int32
}

func faceTarget(f cubemap.Face) uint32 {
	return gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(f)
}

// NewCubemapTexture allocates every face from the current cubemap images, so the texture
// is complete and samplable before any real face arrives.
func NewCubemapTexture(c *cubemap.Cubemap) *CubemapTexture {
	t := &CubemapTexture{Size: int32(c.Size)}

	gl.GenTextures(1, &t.Id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, t.Id)
	for _, f := range cubemap.Faces() {
		img := c.Face(f)
		gl.TexImage2D(faceTarget(f), 0, gl.RGBA8, t.Size, t.Size,
			0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		runtime.KeepAlive(img)
	}
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	return t
}

// UploadFace replaces one face and regenerates the mipmap chain.
func (t *CubemapTexture) UploadFace(f cubemap.Face, img *image.RGBA) error {
	if int32(img.Rect.Dx()) != t.Size || int32(img.Rect.Dy()) != t.Size {
		return errors.Errorf("face %v is %v, texture is %d", f, img.Rect.Size(), t.Size)
	}

	gl.BindTexture(gl.TEXTURE_CUBE_MAP, t.Id)
	gl.TexSubImage2D(faceTarget(f), 0, 0, 0, t.Size, t.Size, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	runtime.KeepAlive(img)
	return nil
}

func (t *CubemapTexture) Delete() {
	if t.Id != 0 {
		gl.DeleteTextures(1, &t.Id)
		t.Id = 0
	}
}
