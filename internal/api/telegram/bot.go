package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "leafscan/internal/application"
	"leafscan/internal/domain/entity"
	"leafscan/internal/render"
)

const (
	msgStart = `👋 Привет! Я бот для распознавания болезней растений по фото листа.

📸 Отправьте мне фото листа, и я попробую определить болезнь и подскажу, как её лечить.

📋 Команды:
/check — начать проверку
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото листа
2️⃣ Бот отправит его на распознавание
3️⃣ Вы получите результат: болезнь, уверенность, симптомы и лечение

💡 Рекомендации:
• Снимайте при хорошем освещении
• Используйте однотонный фон
• В кадре должен быть один лист

📋 Команды:
/check — начать проверку
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото листа для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото листа для проверки."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается, подождите."
	msgProcessingError = "⚠️ Не удалось скачать изображение. Попробуйте отправить фото ещё раз."
)

// botAPI — часть tgbotapi.BotAPI, которой пользуется бот
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot представляет Telegram-бота
type Bot struct {
	api     botAPI
	users   *app.UserService
	front   *app.FrontService
	http    *http.Client
	fileURL func(file tgbotapi.File) string
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, front *app.FrontService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return newBot(api, users, front, func(file tgbotapi.File) string {
		return file.Link(api.Token)
	}), nil
}

func newBot(api botAPI, users *app.UserService, front *app.FrontService, fileURL func(tgbotapi.File) string) *Bot {
	return &Bot{
		api:     api,
		users:   users,
		front:   front,
		http:    http.DefaultClient,
		fileURL: fileURL,
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx.
// Каждое сообщение обрабатывается в своей горутине; перед выходом
// Run дожидается всех начатых обработчиков.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото (в том числе отправленного файлом)
	if fileID := imageFileID(msg); fileID != "" {
		claimed, err := b.users.TryStartProcessing(ctx, msg.From.ID, msg.Chat.ID)
		if err != nil {
			log.Printf("Error saving user state: %v", err)
			return
		}
		if !claimed {
			b.sendMessage(msg.Chat.ID, msgBusy)
			return
		}
		b.handlePhoto(ctx, msg, fileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setState(ctx, userID, chatID, b.users.Cancel)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		b.setState(ctx, userID, chatID, b.users.BeginCheck)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		b.setState(ctx, userID, chatID, b.users.Cancel)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto скачивает фото, отправляет его на /detect и возвращает результат.
// Пользователь уже переведён в состояние обработки.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	// Возвращаем в главное меню при любом исходе
	defer b.setState(ctx, userID, chatID, b.users.Cancel)

	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	log.Printf("Received image: %d bytes", len(imageData))

	panel := b.front.Submit(ctx, &entity.Upload{
		Filename:    fileID + ".jpg",
		ContentType: http.DetectContentType(imageData),
		Data:        imageData,
	})
	b.sendMessage(chatID, render.Text(panel))
}

// imageFileID возвращает ID файла с фото максимального разрешения
// или документа-изображения
func imageFileID(msg *tgbotapi.Message) string {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID
	}
	return ""
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.fileURL(file), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) setState(ctx context.Context, userID, chatID int64, fn func(context.Context, int64, int64) (*entity.User, error)) {
	if _, err := fn(ctx, userID, chatID); err != nil {
		log.Printf("Error saving user state: %v", err)
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
