// Package input turns pointer drags into the camera yaw.
package input

import "sync"

// DragStep is the yaw change per pointer move, independent of the distance moved.
const DragStep = 0.1

// Drag accumulates yaw while a pointer button is held. Moving right decreases yaw,
// moving left increases it.
type Drag struct {
	mu       sync.Mutex
	dragging bool
	prevX    float64
	yaw      float32
}

func (d *Drag) Press(x float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dragging = true
	d.prevX = x
}

func (d *Drag) Move(x float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dragging {
		return
	}
	if x > d.prevX {
		d.yaw -= DragStep
	} else if x < d.prevX {
		d.yaw += DragStep
	}
	d.prevX = x
}

func (d *Drag) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dragging = false
}

func (d *Drag) Dragging() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dragging
}

// Yaw returns the accumulated angle in radians.
func (d *Drag) Yaw() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.yaw
}
