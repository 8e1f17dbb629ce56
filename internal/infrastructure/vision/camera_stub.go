//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"leafscan/internal/domain/entity"
)

// Camera — заглушка для сборки без OpenCV.
type Camera struct {
	device int
}

// NewCamera возвращает ошибку, если сборка без тега gocv.
func NewCamera(device int) (*Camera, error) {
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", entity.ErrCameraUnavailable)
}

// Frame возвращает ошибку, если сборка без тега gocv.
func (c *Camera) Frame(ctx context.Context) (image.Image, error) {
	_ = ctx
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", entity.ErrCameraUnavailable)
}

// Close ничего не делает.
func (c *Camera) Close() error {
	return nil
}
