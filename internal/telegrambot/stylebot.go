package telegrambot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrPunder/qrstyle/internal/configurator"
	"github.com/MrPunder/qrstyle/internal/imagedata"
	"github.com/MrPunder/qrstyle/internal/logger"
	"github.com/MrPunder/qrstyle/internal/models"
	"github.com/MrPunder/qrstyle/internal/renderer"
	"github.com/MrPunder/qrstyle/internal/storage"
	tele "gopkg.in/telebot.v3"
)

const imageTimeout = 30 * time.Second

// StyleBot ведет отдельный конфигуратор для каждого чата
type StyleBot struct {
	bot    *tele.Bot
	chats  *chatSessions
	logger logger.Logger
}

func newStyleBot(store storage.Storage, logger logger.Logger) *StyleBot {
	return &StyleBot{
		chats:  newChatSessions(store),
		logger: logger,
	}
}

// Start запускает бота
func (sb *StyleBot) Start() error {
	sb.logger.Info("Запуск бота-конфигуратора")

	sb.bot.Handle("/start", sb.handleStart)
	sb.bot.Handle("/help", sb.handleHelp)
	for command := range commandFields {
		sb.bot.Handle(command, sb.handleField)
	}
	sb.bot.Handle("/noimage", sb.handleNoImage)
	sb.bot.Handle("/preview", sb.handlePreview)
	sb.bot.Handle("/export", sb.handleExport)

	// Логотип можно прислать фотографией или файлом
	sb.bot.Handle(tele.OnPhoto, sb.handlePhoto)
	sb.bot.Handle(tele.OnDocument, sb.handleDocument)
	sb.bot.Handle(tele.OnText, sb.handleHelp)

	go sb.bot.Start()

	return nil
}

// Stop останавливает бота
func (sb *StyleBot) Stop() error {
	sb.logger.Info("Остановка бота-конфигуратора")
	sb.bot.Stop()
	return nil
}

func (sb *StyleBot) handleStart(c tele.Context) error {
	sb.logger.Infof("Чат %d запустил бота", c.Chat().ID)

	sess, err := sb.chats.reset(c.Chat().ID)
	if err != nil {
		sb.logger.Errorf("Ошибка создания сессии: %v", err)
		return c.Send("Не удалось начать настройку. Попробуй позже.")
	}

	return c.Send(helpText + "\n\n" + describe(sess.Configurator.Snapshot()))
}

func (sb *StyleBot) handleHelp(c tele.Context) error {
	return c.Send(helpText)
}

// handleField обрабатывает команды, меняющие поля конфигурации
func (sb *StyleBot) handleField(c tele.Context) error {
	command := NormalizeCommand(c.Text())

	reply, err := sb.applyCommand(c.Chat().ID, command, c.Message().Payload)
	if err != nil {
		return c.Send(userMessage(err))
	}
	return c.Send(reply)
}

func (sb *StyleBot) handleNoImage(c tele.Context) error {
	sess, err := sb.chats.get(c.Chat().ID)
	if err != nil {
		return c.Send(userMessage(err))
	}
	if err := sess.Configurator.ClearImage(); err != nil {
		return c.Send(userMessage(err))
	}
	return c.Send("Логотип убран.")
}

func (sb *StyleBot) handlePreview(c tele.Context) error {
	data, err := sb.preview(c.Chat().ID)
	if err != nil {
		sb.logger.Errorf("Ошибка подготовки превью: %v", err)
		return c.Send(userMessage(err))
	}

	photo := &tele.Photo{
		File: tele.File{
			FileReader: bytes.NewReader(data),
		},
	}
	return c.Send(photo)
}

func (sb *StyleBot) handleExport(c tele.Context) error {
	data, ext, err := sb.export(c.Chat().ID)
	if err != nil {
		sb.logger.Errorf("Ошибка выгрузки: %v", err)
		return c.Send(userMessage(err))
	}

	doc := &tele.Document{
		File: tele.File{
			FileReader: bytes.NewReader(data),
		},
		FileName: "qr." + string(ext),
		MIME:     renderer.ContentType(ext),
	}
	return c.Send(doc)
}

func (sb *StyleBot) handlePhoto(c tele.Context) error {
	photo := c.Message().Photo
	if photo == nil {
		return c.Send(userMessage(ErrNotAnImage))
	}
	return sb.handleFile(c, &photo.File)
}

func (sb *StyleBot) handleDocument(c tele.Context) error {
	doc := c.Message().Document
	if doc == nil || !strings.HasPrefix(doc.MIME, "image/") {
		return c.Send(userMessage(ErrNotAnImage))
	}
	return sb.handleFile(c, &doc.File)
}

func (sb *StyleBot) handleFile(c tele.Context, file *tele.File) error {
	rc, err := sb.bot.File(file)
	if err != nil {
		sb.logger.Errorf("Ошибка загрузки файла: %v", err)
		return c.Send("Не удалось скачать файл.")
	}
	defer rc.Close()

	if err := sb.setImage(c.Chat().ID, rc); err != nil {
		return c.Send(userMessage(err))
	}
	return c.Send("Логотип установлен. /preview покажет результат.")
}

// applyCommand проверяет все аргументы команды и только потом меняет поля
func (sb *StyleBot) applyCommand(chatID int64, command, payload string) (string, error) {
	updates, err := parseUpdates(command, payload)
	if err != nil {
		return "", err
	}

	sess, err := sb.chats.get(chatID)
	if err != nil {
		return "", err
	}

	check := sess.Configurator.Snapshot()
	for _, u := range updates {
		if err := check.Set(u.field, u.value); err != nil {
			return "", err
		}
	}

	for _, u := range updates {
		if err := sess.Configurator.UpdateField(u.field, u.value); err != nil {
			sb.logger.Errorf("Ошибка изменения поля %s: %v", u.field, err)
			return "", err
		}
	}

	return describe(sess.Configurator.Snapshot()), nil
}

func (sb *StyleBot) setImage(chatID int64, r io.Reader) error {
	sess, err := sb.chats.get(chatID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), imageTimeout)
	defer cancel()

	return <-sess.Configurator.SetImageFile(ctx, r)
}

func (sb *StyleBot) preview(chatID int64) ([]byte, error) {
	sess, err := sb.chats.get(chatID)
	if err != nil {
		return nil, err
	}

	img, _ := sess.Canvas.Image()
	if img == nil {
		return nil, errors.New("изображение еще не готово")
	}

	var buf bytes.Buffer
	if err := renderer.Encode(&buf, img, models.ExtensionPNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (sb *StyleBot) export(chatID int64) ([]byte, models.FileExtension, error) {
	sess, err := sb.chats.get(chatID)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	ext, err := sess.Configurator.ExportImage(&buf)
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), ext, nil
}

// userMessage переводит ошибку в понятный пользователю ответ
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoArguments):
		return "Укажи значение после команды. /help покажет примеры."
	case errors.Is(err, ErrTooManyArguments):
		return "Слишком много значений. /help покажет примеры."
	case errors.Is(err, models.ErrInvalidValue):
		return fmt.Sprintf("Неверное значение: %v", err)
	case errors.Is(err, models.ErrUnknownField), errors.Is(err, ErrUnknownCommand):
		return "Такой настройки нет. /help покажет список команд."
	case errors.Is(err, ErrNotAnImage),
		errors.Is(err, imagedata.ErrUnsupportedType),
		errors.Is(err, imagedata.ErrEmptyFile):
		return "Пришли изображение в формате PNG, JPEG, GIF или WebP."
	case errors.Is(err, imagedata.ErrTooLarge):
		return "Файл слишком большой."
	case errors.Is(err, configurator.ErrStaleImage):
		return "Уже выбрано другое изображение."
	case errors.Is(err, configurator.ErrClosed):
		return "Сессия закрыта. Начни заново с /start."
	}
	return "Произошла ошибка. Пожалуйста, попробуйте позже."
}
