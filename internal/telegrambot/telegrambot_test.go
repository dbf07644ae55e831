package telegrambot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/MrPunder/qrstyle/internal/config"
	"github.com/MrPunder/qrstyle/internal/configurator"
	"github.com/MrPunder/qrstyle/internal/models"
	"github.com/MrPunder/qrstyle/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string)                   {}
func (m *mockLogger) Infof(format string, args ...any)  {}
func (m *mockLogger) Error(msg string)                  {}
func (m *mockLogger) Errorf(format string, args ...any) {}
func (m *mockLogger) Debug(msg string)                  {}
func (m *mockLogger) Debugf(format string, args ...any) {}

func setupBot(t *testing.T) (*StyleBot, *storage.Memstorage) {
	t.Helper()
	conf := config.Default()
	conf.Renderer.Width = 150
	conf.Renderer.Height = 150

	builder, err := configurator.NewBuilder(conf, &mockLogger{})
	require.NoError(t, err)

	store := storage.NewMemstorage(8, time.Hour, builder.Build, &mockLogger{})
	t.Cleanup(store.Close)

	return newStyleBot(store, &mockLogger{}), store
}

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "/url https://example.com", "/url"},
		{"WithBotName", "/dots@qrstyle_bot rounded", "/dots"},
		{"Uppercase", "/BG #fff", "/bg"},
		{"Leading spaces", "   /export", "/export"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeCommand(tt.input))
		})
	}
}

func TestParseUpdates(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		payload  string
		expected []fieldUpdate
		wantErr  error
	}{
		{"URL", "/url", "https://example.com", []fieldUpdate{{models.FieldURL, "https://example.com"}}, nil},
		{"TextWithSpaces", "/url", "  hello world ", []fieldUpdate{{models.FieldURL, "hello world"}}, nil},
		{"SquareTypeOnly", "/square", "dot", []fieldUpdate{{models.FieldCornerSquareType, "dot"}}, nil},
		{"SquareWithColor", "/square", "extra-rounded #ff0000", []fieldUpdate{
			{models.FieldCornerSquareType, "extra-rounded"},
			{models.FieldCornerSquareColor, "#ff0000"},
		}, nil},
		{"CornerDot", "/cornerdot", "square", []fieldUpdate{{models.FieldCornerDotType, "square"}}, nil},
		{"Size", "/size", "0.5", []fieldUpdate{{models.FieldImageSize, "0.5"}}, nil},
		{"Empty", "/bg", "  ", nil, ErrNoArguments},
		{"TooMany", "/dots", "rounded square", nil, ErrTooManyArguments},
		{"Unknown", "/font", "arial", nil, ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates, err := parseUpdates(tt.command, tt.payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, updates)
		})
	}
}

func TestApplyCommand(t *testing.T) {
	sb, store := setupBot(t)
	chatID := int64(42)

	reply, err := sb.applyCommand(chatID, "/url", "https://example.com")
	require.NoError(t, err)
	assert.Contains(t, reply, "https://example.com")
	assert.Equal(t, 1, store.Len())

	reply, err = sb.applyCommand(chatID, "/square", "dot #123456")
	require.NoError(t, err)
	assert.Contains(t, reply, "dot #123456")

	sess, err := sb.chats.get(chatID)
	require.NoError(t, err)
	cfg := sess.Configurator.Snapshot()
	assert.Equal(t, "https://example.com", cfg.Data)
	assert.Equal(t, models.CornerSquareDot, cfg.CornersSquareType)
	assert.Equal(t, "#123456", cfg.CornersSquareColor)
	assert.Equal(t, 1, store.Len())
}

func TestApplyCommandIsAtomic(t *testing.T) {
	sb, _ := setupBot(t)
	chatID := int64(7)

	// тип верный, цвет нет: не должно примениться ничего
	_, err := sb.applyCommand(chatID, "/cornerdot", "square red")
	assert.ErrorIs(t, err, models.ErrInvalidValue)

	sess, err := sb.chats.get(chatID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStyleConfig(), sess.Configurator.Snapshot())
}

func TestChatsAreIndependent(t *testing.T) {
	sb, store := setupBot(t)

	_, err := sb.applyCommand(1, "/bg", "#000000")
	require.NoError(t, err)
	_, err = sb.applyCommand(2, "/bg", "#ffffff")
	require.NoError(t, err)

	first, err := sb.chats.get(1)
	require.NoError(t, err)
	second, err := sb.chats.get(2)
	require.NoError(t, err)

	assert.Equal(t, "#000000", first.Configurator.Snapshot().BackgroundColor)
	assert.Equal(t, "#ffffff", second.Configurator.Snapshot().BackgroundColor)
	assert.Equal(t, 2, store.Len())
}

func TestResetAndExpiredSession(t *testing.T) {
	sb, store := setupBot(t)
	chatID := int64(99)

	_, err := sb.applyCommand(chatID, "/dots", "square")
	require.NoError(t, err)
	old, err := sb.chats.get(chatID)
	require.NoError(t, err)

	fresh, err := sb.chats.reset(chatID)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, fresh.ID)
	assert.Equal(t, models.DefaultStyleConfig(), fresh.Configurator.Snapshot())
	assert.ErrorIs(t, old.Configurator.ClearImage(), configurator.ErrClosed)

	// сессия пропала из хранилища: чат получает новую
	require.NoError(t, store.Delete(fresh.ID))
	again, err := sb.chats.get(chatID)
	require.NoError(t, err)
	assert.NotEqual(t, fresh.ID, again.ID)
}

func TestClosedSessionsLeaveNoChatEntries(t *testing.T) {
	sb, store := setupBot(t)

	for chatID := int64(1); chatID <= 5; chatID++ {
		_, err := sb.applyCommand(chatID, "/bg", "#000000")
		require.NoError(t, err)
	}
	require.Equal(t, 5, sb.chats.len())

	sess, err := sb.chats.get(3)
	require.NoError(t, err)
	require.NoError(t, store.Delete(sess.ID))

	assert.Eventually(t, func() bool {
		return sb.chats.len() == 4
	}, time.Second, 10*time.Millisecond)

	// сессии истекают без участия чата: записи тоже пропадают
	store.Close()
	assert.Eventually(t, func() bool {
		return sb.chats.len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestPreviewAndExport(t *testing.T) {
	sb, _ := setupBot(t)
	chatID := int64(5)

	data, err := sb.preview(chatID)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 150, img.Bounds().Dx())

	_, err = sb.applyCommand(chatID, "/format", "jpeg")
	require.NoError(t, err)

	data, ext, err := sb.export(chatID)
	require.NoError(t, err)
	assert.Equal(t, models.ExtensionJPEG, ext)
	_, err = jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestSetImage(t *testing.T) {
	sb, _ := setupBot(t)
	chatID := int64(11)

	logo := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			logo.Set(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, logo, nil))

	require.NoError(t, sb.setImage(chatID, &buf))
	sess, err := sb.chats.get(chatID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sess.Configurator.Snapshot().Image, "data:image/jpeg"))

	err = sb.setImage(chatID, strings.NewReader("definitely not an image"))
	assert.Equal(t, "Пришли изображение в формате PNG, JPEG, GIF или WebP.", userMessage(err))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err      error
		contains string
	}{
		{ErrNoArguments, "Укажи значение"},
		{fmt.Errorf("%w: x", ErrTooManyArguments), "Слишком много"},
		{fmt.Errorf("%w for dot-color: bad", models.ErrInvalidValue), "Неверное значение"},
		{ErrUnknownCommand, "Такой настройки нет"},
		{configurator.ErrClosed, "/start"},
		{fmt.Errorf("boom"), "Произошла ошибка"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Contains(t, userMessage(tt.err), tt.contains)
		})
	}
}
