//go:build onnx
// +build onnx

package vision

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxClassifier запускает модель классификации болезней через ONNX Runtime.
type OnnxClassifier struct {
	mu        sync.Mutex
	session   *ort.AdvancedSession
	input     *ort.Tensor[float32]
	output    *ort.Tensor[float32]
	imageSize int
}

// NewOnnxClassifier загружает модель. Вход — NHWC [1,size,size,3], выход — [1,classes].
func NewOnnxClassifier(modelPath, inputName, outputName string, imageSize, classes int) (*OnnxClassifier, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(imageSize), int64(imageSize), 3))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(classes)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &OnnxClassifier{
		session:   session,
		input:     input,
		output:    output,
		imageSize: imageSize,
	}, nil
}

// Classify возвращает вероятности классов.
func (c *OnnxClassifier) Classify(ctx context.Context, imageData []byte) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := Decode(imageData)
	if err != nil {
		return nil, err
	}
	tensor := ToTensor(img, c.imageSize)

	// Тензоры общие для всех вызовов.
	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.input.GetData(), tensor)
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := c.output.GetData()
	probs := make([]float32, len(out))
	copy(probs, out)
	return probs, nil
}

// Close освобождает ресурсы ONNX Runtime.
func (c *OnnxClassifier) Close() error {
	if c.input != nil {
		c.input.Destroy()
	}
	if c.output != nil {
		c.output.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	return ort.DestroyEnvironment()
}
