package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"log"

	"leafscan/internal/domain/entity"
	"leafscan/internal/domain/port"
	"leafscan/internal/render"
)

// CaptureFilename — имя, под которым отправляется кадр с камеры.
const CaptureFilename = "webcam_capture.jpg"

// FrontService — сценарии пользовательского интерфейса: выбрать файл
// или снять кадр, отправить на /detect и показать результат.
type FrontService struct {
	client port.DetectClient
	camera port.FrameSource
}

// NewFrontService создаёт сервис. camera может быть nil.
func NewFrontService(client port.DetectClient, camera port.FrameSource) *FrontService {
	return &FrontService{client: client, camera: camera}
}

// Submit отправляет выбранный файл и возвращает панель результата.
// Без файла запрос не отправляется, панель содержит только предупреждение.
func (s *FrontService) Submit(ctx context.Context, upload *entity.Upload) render.Panel {
	return render.Result(s.client.Detect(ctx, upload))
}

// Capture снимает текущий кадр, кодирует его в JPEG и отправляет.
func (s *FrontService) Capture(ctx context.Context) render.Panel {
	upload, err := s.CaptureUpload(ctx)
	if err != nil {
		log.Printf("Webcam not accessible: %v", err)
		return render.Failure(err)
	}
	return s.Submit(ctx, upload)
}

// CaptureUpload снимает кадр и упаковывает его в JPEG размером с кадр.
func (s *FrontService) CaptureUpload(ctx context.Context) (*entity.Upload, error) {
	if s.camera == nil {
		return nil, entity.ErrCameraUnavailable
	}

	frame, err := s.camera.Frame(ctx)
	if err != nil {
		return nil, err
	}
	if frame == nil || frame.Bounds().Empty() {
		return nil, errors.New("empty frame")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	return &entity.Upload{
		Filename:    CaptureFilename,
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}
