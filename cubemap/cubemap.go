// Package cubemap keeps the six faces of the environment map and fetches them in the background.
// Faces start as opaque placeholders so the map is always complete.
package cubemap

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/pkg/errors"
)

const DefaultSize = 2048

// Face order matches GL_TEXTURE_CUBE_MAP_POSITIVE_X + i.
type Face int

const (
	FaceRight Face = iota // +X
	FaceLeft              // -X
	FaceTop               // +Y
	FaceBottom            // -Y
	FaceFront             // +Z
	FaceBack              // -Z

	FacesCount = 6
)

var faceNames = [FacesCount]string{"right", "left", "top", "bottom", "front", "back"}

func (f Face) String() string {
	if f < 0 || f >= FacesCount {
		return fmt.Sprintf("face(%d)", int(f))
	}
	return faceNames[f]
}

func Faces() [FacesCount]Face {
	return [FacesCount]Face{FaceRight, FaceLeft, FaceTop, FaceBottom, FaceFront, FaceBack}
}

type FaceState int

const (
	StatePlaceholder FaceState = iota
	StateLoaded
	StateFailed
)

func (s FaceState) String() string {
	switch s {
	case StatePlaceholder:
		return "placeholder"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s FaceState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type FaceResult struct {
	Face  Face
	Image *image.RGBA
	Err   error
}

type Cubemap struct {
	Size int

	mu     sync.Mutex
	faces  [FacesCount]*image.RGBA
	states [FacesCount]FaceState
	errs   [FacesCount]error
}

// New returns a complete cubemap whose faces all share one opaque placeholder image.
func New(size int, placeholder color.Color) *Cubemap {
	img := Placeholder(size, placeholder)
	c := &Cubemap{Size: size}
	for i := range c.faces {
		c.faces[i] = img
	}
	return c
}

func Placeholder(size int, c color.Color) *image.RGBA {
	r, g, b, _ := c.RGBA()
	opaque := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: opaque}, image.Point{}, draw.Src)
	return img
}

func (c *Cubemap) Face(f Face) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.faces[f]
}

func (c *Cubemap) State(f Face) FaceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[f]
}

// Err is the reason a failed face keeps its placeholder, nil otherwise.
func (c *Cubemap) Err(f Face) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs[f]
}

func (c *Cubemap) States() map[string]FaceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	states := make(map[string]FaceState, FacesCount)
	for _, f := range Faces() {
		states[f.String()] = c.states[f]
	}
	return states
}

// Apply records a finished fetch. A face settles once: later results for it are rejected.
// Unusable images settle the face as failed, the reason is kept in Err.
func (c *Cubemap) Apply(r FaceResult) error {
	if r.Face < 0 || r.Face >= FacesCount {
		return errors.Errorf("invalid face %v", r.Face)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.states[r.Face] != StatePlaceholder {
		return errors.Errorf("face %v already %v", r.Face, c.states[r.Face])
	}
	if r.Err == nil && (r.Image == nil || r.Image.Rect.Dx() != c.Size || r.Image.Rect.Dy() != c.Size) {
		r.Err = errors.Errorf("face %v image does not match cubemap size %d", r.Face, c.Size)
	}
	if r.Err != nil {
		c.states[r.Face] = StateFailed
		c.errs[r.Face] = r.Err
		return nil
	}
	c.faces[r.Face] = r.Image
	c.states[r.Face] = StateLoaded
	return nil
}
