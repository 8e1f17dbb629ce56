package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"leafscan/config"
	app "leafscan/internal/application"
	"leafscan/internal/domain/entity"
	"leafscan/internal/domain/port"
	"leafscan/internal/infrastructure/detectapi"
	"leafscan/internal/infrastructure/vision"
	"leafscan/internal/render"
)

const usage = `Enter a path to a leaf photo to detect its disease.
  :capture  send a webcam frame
  :quit     exit`

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var camera port.FrameSource
	if cam, err := vision.NewCamera(cfg.CameraDevice); err == nil {
		defer cam.Close()
		camera = cam
	}

	front := app.NewFrontService(detectapi.NewClient(cfg.DetectURL, cfg.DetectTimeout), camera)

	rl, err := readline.New("leaf> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	fmt.Println(usage)
	ctx := context.Background()
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF, readline.ErrInterrupt
			return nil
		}
		line = strings.TrimSpace(line)

		switch line {
		case ":quit":
			return nil
		case ":help":
			fmt.Println(usage)
		case ":capture":
			fmt.Println(render.Text(front.Capture(ctx)))
		default:
			upload, err := readUpload(line)
			if err != nil {
				fmt.Println(render.Text(render.Failure(err)))
				continue
			}
			fmt.Println(render.Text(front.Submit(ctx, upload)))
		}
	}
}

// readUpload читает файл; пустой путь означает «файл не выбран».
func readUpload(path string) (*entity.Upload, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &entity.Upload{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}
