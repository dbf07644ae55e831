// Package configurator keeps a StyleConfig and its renderer consistent.
//
// Every accepted edit is followed by a reconcile step that pushes the full
// merged StyleConfig to the renderer, so the rendered output always reflects
// the latest accepted configuration.
package configurator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/MrPunder/qrstyle/internal/imagedata"
	"github.com/MrPunder/qrstyle/internal/logger"
	"github.com/MrPunder/qrstyle/internal/models"
	"github.com/MrPunder/qrstyle/internal/renderer"
)

var (
	ErrAlreadyInitialized = errors.New("configurator already initialized")
	ErrNotInitialized     = errors.New("configurator not initialized")
	ErrClosed             = errors.New("configurator closed")
	ErrStaleImage         = errors.New("image selection superseded by a newer one")
)

type state int

const (
	stateNew state = iota
	stateActive
	stateClosed
)

// Configurator владеет конфигурацией стиля и единственным рендерером
type Configurator struct {
	mu       sync.Mutex
	style    models.StyleConfig
	renderer renderer.Renderer
	state    state
	// номер последнего выбора файла; более ранние результаты отбрасываются
	imageGen     uint64
	maxImageSize int64
	log          logger.Logger
}

// New создает конфигуратор с начальными значениями стиля
func New(style models.StyleConfig, r renderer.Renderer, log logger.Logger) *Configurator {
	return &Configurator{
		style:        style,
		renderer:     r,
		maxImageSize: imagedata.DefaultMaxSize,
		log:          log,
	}
}

// SetMaxImageSize ограничивает размер принимаемых файлов логотипа
func (c *Configurator) SetMaxImageSize(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxImageSize = n
}

// Initialize подключает вывод рендерера к поверхности. Повторный вызов
// возвращает ErrAlreadyInitialized.
func (c *Configurator) Initialize(surface renderer.Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateActive:
		return ErrAlreadyInitialized
	case stateClosed:
		return ErrClosed
	}

	c.renderer.Attach(surface)
	c.state = stateActive
	c.log.Debug("Renderer attached to surface")

	if err := c.reconcile(); err != nil {
		return fmt.Errorf("initial render failed: %w", err)
	}
	return nil
}

// UpdateField приводит значение к типу поля, сохраняет его и
// синхронизирует рендерер. При ошибке конфигурация не меняется.
func (c *Configurator) UpdateField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return err
	}
	// выбор изображения вручную отменяет ожидающее чтение файла
	if name == models.FieldImage {
		c.imageGen++
	}

	return c.apply(name, value)
}

// ClearImage убирает логотип
func (c *Configurator) ClearImage() error {
	return c.UpdateField(models.FieldImage, "")
}

// SetImageFile запускает асинхронное преобразование файла в data URL.
// Результат применяется, только если за это время не был выбран другой файл.
// В канал приходит ровно одно значение: nil или ошибка.
func (c *Configurator) SetImageFile(ctx context.Context, file io.Reader) <-chan error {
	done := make(chan error, 1)

	c.mu.Lock()
	if err := c.ready(); err != nil {
		c.mu.Unlock()
		done <- err
		close(done)
		return done
	}
	c.imageGen++
	gen := c.imageGen
	limit := c.maxImageSize
	c.mu.Unlock()

	results := imagedata.FromFile(ctx, file, limit)

	go func() {
		defer close(done)

		res := <-results
		if res.Err != nil {
			c.log.Errorf("Image file conversion failed: %v", res.Err)
			done <- res.Err
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if err := c.ready(); err != nil {
			done <- err
			return
		}
		if gen != c.imageGen {
			c.log.Debugf("Dropping image selection %d, current is %d", gen, c.imageGen)
			done <- ErrStaleImage
			return
		}

		done <- c.apply(models.FieldImage, res.URL)
	}()

	return done
}

// ExportImage выгружает текущее изображение в выбранном формате
func (c *Configurator) ExportImage(w io.Writer) (models.FileExtension, error) {
	c.mu.Lock()
	if err := c.ready(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	ext := c.style.Extension
	c.mu.Unlock()

	if err := c.renderer.Export(w, ext); err != nil {
		c.log.Errorf("Export to %s failed: %v", ext, err)
		return "", err
	}
	c.log.Debugf("Exported image as %s", ext)
	return ext, nil
}

// Snapshot возвращает копию текущей конфигурации
func (c *Configurator) Snapshot() models.StyleConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.style
}

// RendererOptions текущая конфигурация рендерера
func (c *Configurator) RendererOptions() renderer.Options {
	return c.renderer.Options()
}

// Close завершает работу конфигуратора; дальнейшие вызовы вернут ErrClosed
func (c *Configurator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateClosed {
		c.state = stateClosed
		c.imageGen++
		c.log.Debug("Configurator closed")
	}
}

func (c *Configurator) ready() error {
	switch c.state {
	case stateNew:
		return ErrNotInitialized
	case stateClosed:
		return ErrClosed
	}
	return nil
}

// apply вызывается под блокировкой
func (c *Configurator) apply(name, value string) error {
	prev := c.style
	if err := c.style.Set(name, value); err != nil {
		return err
	}

	if err := c.reconcile(); err != nil {
		c.style = prev
		// рендерер при ошибке сохраняет прежнее состояние, конфигурация тоже
		if errors.Is(err, renderer.ErrInvalidInput) {
			return fmt.Errorf("%w for %s: %w", models.ErrInvalidValue, name, err)
		}
		return fmt.Errorf("renderer rejected %s: %w", name, err)
	}

	c.log.Debugf("Field %s updated", name)
	return nil
}

// reconcile передает рендереру всю конфигурацию целиком
func (c *Configurator) reconcile() error {
	return c.renderer.Update(renderer.FromStyle(c.style))
}
