package renderer

import (
	"image"
	"sync"
)

// Canvas поверхность, хранящая последнее показанное изображение
type Canvas struct {
	mu      sync.RWMutex
	img     image.Image
	version uint64
}

func NewCanvas() *Canvas {
	return &Canvas{}
}

func (c *Canvas) Show(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.img = img
	c.version++
}

// Image последнее изображение и номер перерисовки
func (c *Canvas) Image() (image.Image, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.img, c.version
}
