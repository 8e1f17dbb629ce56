//go:build !onnx
// +build !onnx

package vision

import (
	"context"
	"errors"
)

// OnnxClassifier — заглушка для сборки без ONNX Runtime.
type OnnxClassifier struct {
	imageSize int
}

// NewOnnxClassifier создаёт классификатор-заглушку.
func NewOnnxClassifier(modelPath, inputName, outputName string, imageSize, classes int) (*OnnxClassifier, error) {
	return &OnnxClassifier{imageSize: imageSize}, nil
}

// Classify возвращает ошибку, если сборка без тега onnx.
func (c *OnnxClassifier) Classify(ctx context.Context, imageData []byte) ([]float32, error) {
	_ = ctx
	_ = imageData
	return nil, errors.New("onnx build tag is not enabled")
}

// Close ничего не делает.
func (c *OnnxClassifier) Close() error {
	return nil
}
