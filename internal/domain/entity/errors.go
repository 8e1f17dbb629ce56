package entity

import "errors"

var (
	// ErrNoImage — файл не выбран, запрос не отправляется.
	ErrNoImage = errors.New("please select an image first")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrCameraUnavailable  = errors.New("camera is not available")
)
