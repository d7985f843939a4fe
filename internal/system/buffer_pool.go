package system

import (
	"context"
	"image"
	"sync"
)

// FramePool recycles frame buffers of one size to keep the garbage
// collector quiet. At most Cap buffers are handed out at a time; Get blocks
// until one is returned.
type FramePool struct {
	rect   image.Rectangle
	pool   sync.Pool
	tokens chan struct{}
}

// NewFramePool creates a pool of width x height RGBA frames limited to
// capacity outstanding buffers.
func NewFramePool(width, height, capacity int) *FramePool {
	if capacity < 1 {
		capacity = 1
	}
	rect := image.Rect(0, 0, width, height)
	p := &FramePool{
		rect:   rect,
		tokens: make(chan struct{}, capacity),
	}
	p.pool.New = func() any {
		return image.NewRGBA(rect)
	}
	return p
}

// Cap is the maximum number of outstanding buffers.
func (p *FramePool) Cap() int {
	return cap(p.tokens)
}

// Get returns a buffer, waiting while the pool is exhausted. Buffer contents
// are undefined.
func (p *FramePool) Get(ctx context.Context) (*image.RGBA, error) {
	select {
	case p.tokens <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return p.pool.Get().(*image.RGBA), nil
}

// Put hands a buffer back. Buffers of another size are dropped but still
// release their slot.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	if img.Rect == p.rect {
		p.pool.Put(img)
	}
	select {
	case <-p.tokens:
	default:
	}
}
