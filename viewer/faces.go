package viewer

import (
	"image"
	"log"

	"github.com/schollz/progressbar/v3"

	"github.com/mogaika/envmap_viewer/cubemap"
	"github.com/mogaika/envmap_viewer/status"
)

type faceUploader interface {
	UploadFace(f cubemap.Face, img *image.RGBA) error
}

// facePump hands fetched faces to the texture on the render thread.
type facePump struct {
	results <-chan cubemap.FaceResult
	cube    *cubemap.Cubemap
	target  faceUploader
	status  *status.Hub
	bar     *progressbar.ProgressBar
	settled int
}

func newFacePump(results <-chan cubemap.FaceResult, cube *cubemap.Cubemap, target faceUploader,
	hub *status.Hub, bar *progressbar.ProgressBar) *facePump {
	return &facePump{results: results, cube: cube, target: target, status: hub, bar: bar}
}

// drain applies every result already delivered without blocking.
// Returns false once all faces have settled.
func (p *facePump) drain() bool {
	for p.results != nil {
		select {
		case r, ok := <-p.results:
			if !ok {
				p.results = nil
				log.Printf("[cubemap] %d faces settled: %v", p.settled, p.cube.States())
				return false
			}
			p.apply(r)
		default:
			return true
		}
	}
	return false
}

func (p *facePump) apply(r cubemap.FaceResult) {
	if err := p.cube.Apply(r); err != nil {
		log.Printf("[cubemap] Ignoring result: %v", err)
		return
	}
	p.settled++
	if p.bar != nil {
		p.bar.Add(1)
	}
	progress := float32(p.settled) / float32(cubemap.FacesCount)

	if err := p.cube.Err(r.Face); err != nil {
		log.Printf("[cubemap] Face %v keeps placeholder: %v", r.Face, err)
		p.publishError("face %v failed: %v", r.Face, err)
		return
	}
	if err := p.target.UploadFace(r.Face, p.cube.Face(r.Face)); err != nil {
		log.Printf("[cubemap] Face %v upload error: %v", r.Face, err)
		p.publishError("face %v upload failed: %v", r.Face, err)
		return
	}
	if p.status != nil {
		p.status.Progress(progress, "face %v loaded", r.Face)
	}
}

func (p *facePump) publishError(format string, a ...interface{}) {
	if p.status != nil {
		p.status.Error(format, a...)
	}
}
