package configurator

import (
	"fmt"

	"github.com/MrPunder/qrstyle/internal/config"
	"github.com/MrPunder/qrstyle/internal/logger"
	"github.com/MrPunder/qrstyle/internal/models"
	"github.com/MrPunder/qrstyle/internal/renderer"
)

// Builder собирает готовые к работе конфигураторы с общими кодировщиком и кэшем
type Builder struct {
	Style         models.StyleConfig
	Options       renderer.Options
	Encoder       renderer.Encoder
	Exporter      *renderer.Exporter
	MaxImageBytes int64
	Log           logger.Logger
}

// NewBuilder настраивает сборщик по конфигурации приложения
func NewBuilder(conf *config.Config, log logger.Logger) (*Builder, error) {
	enc, err := renderer.NewEncoder(conf.Renderer.Encoder)
	if err != nil {
		return nil, err
	}
	cache, err := renderer.NewExportCache(conf.Renderer.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create export cache: %w", err)
	}

	opts := renderer.DefaultOptions()
	if conf.Renderer.Width > 0 {
		opts.Width = conf.Renderer.Width
	}
	if conf.Renderer.Height > 0 {
		opts.Height = conf.Renderer.Height
	}

	return &Builder{
		Style:         conf.Style,
		Options:       opts,
		Encoder:       enc,
		Exporter:      renderer.NewExporter(cache),
		MaxImageBytes: conf.Renderer.MaxImageBytes,
		Log:           log,
	}, nil
}

// Build создает рендерер и конфигуратор и подключает вывод к новому холсту
func (b *Builder) Build() (*Configurator, *renderer.Canvas, error) {
	r, err := renderer.New(b.Options, b.Encoder, b.Exporter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	c := New(b.Style, r, b.Log)
	if b.MaxImageBytes > 0 {
		c.SetMaxImageSize(b.MaxImageBytes)
	}

	canvas := renderer.NewCanvas()
	if err := c.Initialize(canvas); err != nil {
		return nil, nil, err
	}
	return c, canvas, nil
}
