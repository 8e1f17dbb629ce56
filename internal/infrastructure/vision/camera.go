//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"leafscan/internal/domain/entity"
)

// Camera читает кадры с веб-камеры через OpenCV.
type Camera struct {
	mu      sync.Mutex
	device  int
	capture *gocv.VideoCapture
}

// NewCamera открывает устройство захвата.
func NewCamera(device int) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrCameraUnavailable, err)
	}
	return &Camera{device: device, capture: capture}, nil
}

// Frame возвращает текущий кадр в его исходном размере.
func (c *Camera) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		return nil, fmt.Errorf("%w: cannot read frame from device %d", entity.ErrCameraUnavailable, c.device)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, errors.New("empty frame")
	}
	return img, nil
}

// Close освобождает устройство.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture.Close()
}
