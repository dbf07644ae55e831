package renderer

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/MrPunder/qrstyle/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrInvalidInput данные или логотип нельзя превратить в QR-код
	ErrInvalidInput = errors.New("value cannot be rendered")
)

// Surface получает изображение после каждой перерисовки
type Surface interface {
	Show(img image.Image)
}

// Renderer внешний по отношению к конфигуратору исполнитель: кодирует,
// рисует и выгружает QR-код.
type Renderer interface {
	Attach(s Surface)
	Update(o Options) error
	Export(w io.Writer, ext models.FileExtension) error
	Options() Options
}

// QRRenderer рисует QR-код средствами gg поверх матрицы от Encoder
type QRRenderer struct {
	mu       sync.RWMutex
	options  Options
	encoder  Encoder
	exporter *Exporter
	surfaces []Surface
	current  image.Image
	logos    *logoCache
}

// New создает рендерер и сразу рисует начальную конфигурацию
func New(o Options, enc Encoder, exp *Exporter) (*QRRenderer, error) {
	if enc == nil {
		enc = BarcodeEncoder{}
	}
	if exp == nil {
		exp = NewExporter(nil)
	}

	r := &QRRenderer{
		options:  merge(DefaultOptions(), o),
		encoder:  enc,
		exporter: exp,
		logos:    newLogoCache(),
	}

	img, err := r.render(r.options)
	if err != nil {
		return nil, err
	}
	r.current = img

	return r, nil
}

// Attach подключает поверхность вывода и сразу показывает текущее изображение
func (r *QRRenderer) Attach(s Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.surfaces = append(r.surfaces, s)
	s.Show(r.current)
}

// Update объединяет переданные параметры с текущими и перерисовывает код.
// При ошибке рендерер остается в прежнем состоянии.
func (r *QRRenderer) Update(o Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := merge(r.options, o)
	img, err := r.render(next)
	if err != nil {
		return err
	}

	r.options = next
	r.current = img
	for _, s := range r.surfaces {
		s.Show(img)
	}
	return nil
}

// Export кодирует текущее изображение в выбранный формат
func (r *QRRenderer) Export(w io.Writer, ext models.FileExtension) error {
	r.mu.RLock()
	o, img := r.options, r.current
	r.mu.RUnlock()

	return r.exporter.Export(w, o, img, ext)
}

func (r *QRRenderer) Options() Options {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o := r.options
	if o.ImageOptions.HideBackgroundDots != nil {
		v := *o.ImageOptions.HideBackgroundDots
		o.ImageOptions.HideBackgroundDots = &v
	}
	return o
}

// Image возвращает последнее нарисованное изображение
func (r *QRRenderer) Image() image.Image {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *QRRenderer) render(o Options) (image.Image, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", o.Width, o.Height)
	}

	logo, err := r.logos.load(o.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load embedded image: %w", ErrInvalidInput, err)
	}

	var m Matrix
	if o.Data != "" {
		level := LevelQ
		if logo != nil {
			level = LevelH
		}
		m, err = r.encoder.Encode(o.Data, level)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	return draw(o, m, logo, r.logos), nil
}
