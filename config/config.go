package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string
	DetectURL     string
	DetectTimeout time.Duration

	TelegramToken string

	Username string
	Password string

	UploadDir           string
	ModelPath           string
	ModelInput          string
	ModelOutput         string
	ImageSize           int
	ConfidenceThreshold float64
	DiseaseCatalog      string

	CameraDevice int
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:            getString("HTTP_ADDR", ":8080"),
		DetectURL:           getString("DETECT_URL", "http://127.0.0.1:8080/detect"),
		DetectTimeout:       getDuration("DETECT_TIMEOUT", 0),
		TelegramToken:       os.Getenv("TELEGRAM_TOKEN"),
		Username:            getString("APP_USERNAME", "farmer"),
		Password:            getString("APP_PASSWORD", "1234"),
		UploadDir:           getString("UPLOAD_DIR", "static/uploads"),
		ModelPath:           getString("MODEL_PATH", "model.onnx"),
		ModelInput:          getString("MODEL_INPUT", "input"),
		ModelOutput:         getString("MODEL_OUTPUT", "output"),
		ImageSize:           getInt("IMAGE_SIZE", 224),
		ConfidenceThreshold: getFloat("CONFIDENCE_THRESHOLD", 0.25),
		DiseaseCatalog:      os.Getenv("DISEASE_CATALOG"),
		CameraDevice:        getInt("CAMERA_DEVICE", 0),
	}

	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Некорректные числа молча заменяются значением по умолчанию.
func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
