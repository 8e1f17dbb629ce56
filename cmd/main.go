package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"leafscan/config"
	"leafscan/internal/api/telegram"
	"leafscan/internal/api/web"
	"leafscan/internal/container"
	"leafscan/internal/domain/port"
	"leafscan/internal/infrastructure/catalog"
	"leafscan/internal/infrastructure/detectapi"
	"leafscan/internal/infrastructure/storage"
	"leafscan/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	diseases, err := catalog.Load(cfg.DiseaseCatalog)
	if err != nil {
		log.Fatalf("Failed to load disease catalog: %v", err)
	}

	uploads, err := storage.NewFileUploadStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}

	classifier, err := vision.NewOnnxClassifier(cfg.ModelPath, cfg.ModelInput, cfg.ModelOutput, cfg.ImageSize, len(diseases.Diseases))
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	defer classifier.Close()

	// Камера не обязательна: без неё работает только загрузка файлов
	var camera port.FrameSource
	if cam, err := vision.NewCamera(cfg.CameraDevice); err != nil {
		log.Printf("Webcam not accessible: %v", err)
	} else {
		defer cam.Close()
		camera = cam
	}

	// Собираем сервисы приложения
	appContainer, err := container.New(container.Deps{
		Users:       storage.NewMemoryUserRepository(),
		Sessions:    storage.NewMemorySessionRepository(),
		Predictions: storage.NewMemoryPredictionRepository(),
		Uploads:     uploads,
		Classifier:  classifier,
		Catalog:     diseases,
		Client:      detectapi.NewClient(cfg.DetectURL, cfg.DetectTimeout),
		Camera:      camera,
		Username:    cfg.Username,
		Password:    cfg.Password,
		Threshold:   cfg.ConfidenceThreshold,
	})
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}

	server, err := web.NewServer(appContainer.DetectionService, appContainer.FrontService, appContainer.AuthService, diseases.Labels())
	if err != nil {
		log.Fatalf("Failed to create web server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.UserService, appContainer.FrontService)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		go func() {
			log.Println("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				log.Printf("Bot error: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on %s", cfg.HTTPAddr)
	log.Printf("Classes: %v", diseases.Labels())
	log.Printf("Detect endpoint: %s", cfg.DetectURL)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
