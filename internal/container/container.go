package container

import (
	app "leafscan/internal/application"
	"leafscan/internal/domain/entity"
	"leafscan/internal/domain/port"
)

type Container struct {
	UserService      *app.UserService
	DetectionService *app.DetectionService
	FrontService     *app.FrontService
	AuthService      *app.AuthService
}

// Deps — зависимости инфраструктуры, собранные в main.
type Deps struct {
	Users       port.UserRepository
	Sessions    port.SessionRepository
	Predictions port.PredictionRepository
	Uploads     port.UploadStore
	Classifier  port.Classifier
	Catalog     *entity.Catalog
	Client      port.DetectClient
	Camera      port.FrameSource

	Username  string
	Password  string
	Threshold float64
}

func New(d Deps) (*Container, error) {
	authService, err := app.NewAuthService(d.Sessions, d.Username, d.Password)
	if err != nil {
		return nil, err
	}

	return &Container{
		UserService:      app.NewUserService(d.Users),
		DetectionService: app.NewDetectionService(d.Classifier, d.Catalog, d.Predictions, d.Uploads, d.Threshold),
		FrontService:     app.NewFrontService(d.Client, d.Camera),
		AuthService:      authService,
	}, nil
}
