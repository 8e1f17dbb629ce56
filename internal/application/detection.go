package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"leafscan/internal/domain/entity"
	"leafscan/internal/domain/port"
)

const (
	// DefaultConfidenceThreshold — ниже этого порога болезнь считается неизвестной.
	DefaultConfidenceThreshold = 0.25

	msgLowConfidence  = "Prediction confidence too low. Try again with a clearer image."
	msgDetectionError = "Error during detection."
)

// DetectionService распознаёт болезнь по фото и ведёт историю.
type DetectionService struct {
	classifier  port.Classifier
	catalog     *entity.Catalog
	predictions port.PredictionRepository
	uploads     port.UploadStore
	threshold   float64
	now         func() time.Time
}

// NewDetectionService создаёт сервис распознавания. uploads может быть nil.
func NewDetectionService(
	classifier port.Classifier,
	catalog *entity.Catalog,
	predictions port.PredictionRepository,
	uploads port.UploadStore,
	threshold float64,
) *DetectionService {
	return &DetectionService{
		classifier:  classifier,
		catalog:     catalog,
		predictions: predictions,
		uploads:     uploads,
		threshold:   threshold,
		now:         time.Now,
	}
}

// Detect сохраняет загрузку, классифицирует её и возвращает ответ для /detect.
// Ошибки модели не возвращаются наружу: клиент получает Unknown.
func (s *DetectionService) Detect(ctx context.Context, upload *entity.Upload) (*entity.DetectResponse, error) {
	filename := upload.Filename
	if s.uploads != nil {
		stored, err := s.uploads.Store(ctx, upload.Filename, upload.Data)
		if err != nil {
			return nil, fmt.Errorf("store upload: %w", err)
		}
		filename = stored
	}

	disease, confidence, err := s.classify(ctx, upload.Data)
	if err != nil {
		log.Printf("Error during detection of %s: %v", filename, err)
		return entity.UnknownResponse(msgDetectionError), nil
	}

	log.Printf("Prediction for %s: %s (%.4f)", filename, disease.Name, confidence)

	if confidence < s.threshold {
		return entity.UnknownResponse(msgLowConfidence), nil
	}

	prediction := &entity.Prediction{
		ID:         s.predictions.NextID(),
		Filename:   filename,
		Disease:    disease.Name,
		Confidence: confidence,
		CreatedAt:  s.now(),
	}
	if err := s.predictions.Save(ctx, prediction); err != nil {
		return nil, fmt.Errorf("save prediction: %w", err)
	}

	return disease.Response(confidence), nil
}

// Threshold возвращает порог уверенности.
func (s *DetectionService) Threshold() float64 {
	return s.threshold
}

// History возвращает сохранённые предсказания, новые первыми.
func (s *DetectionService) History(ctx context.Context) ([]*entity.Prediction, error) {
	return s.predictions.List(ctx)
}

func (s *DetectionService) classify(ctx context.Context, data []byte) (entity.DiseaseInfo, float64, error) {
	if s.classifier == nil {
		return entity.DiseaseInfo{}, 0, errors.New("classifier is not configured")
	}

	probs, err := s.classifier.Classify(ctx, data)
	if err != nil {
		return entity.DiseaseInfo{}, 0, err
	}
	if len(probs) == 0 {
		return entity.DiseaseInfo{}, 0, errors.New("classifier returned no scores")
	}

	idx, best := 0, probs[0]
	for i, p := range probs {
		if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
			return entity.DiseaseInfo{}, 0, fmt.Errorf("classifier returned non-finite score at index %d", i)
		}
		if p > best {
			idx, best = i, p
		}
	}

	disease, ok := s.catalog.At(idx)
	if !ok {
		return entity.DiseaseInfo{}, 0, fmt.Errorf("class index %d is not in catalog", idx)
	}

	return disease, float64(best), nil
}
