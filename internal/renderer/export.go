package renderer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/MrPunder/qrstyle/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultCacheSize = 64
	jpegQuality      = 92
)

// ContentType возвращает MIME-тип для формата выгрузки
func ContentType(ext models.FileExtension) string {
	switch ext {
	case models.ExtensionPNG:
		return "image/png"
	case models.ExtensionJPEG:
		return "image/jpeg"
	case models.ExtensionWEBP:
		return "image/webp"
	}
	return "application/octet-stream"
}

// Exporter кодирует изображения и кэширует результат по конфигурации
type Exporter struct {
	cache *lru.Cache[string, []byte]
}

// NewExporter создает кодировщик с общим кэшем; nil-кэш означает кэш по умолчанию
func NewExporter(cache *lru.Cache[string, []byte]) *Exporter {
	if cache == nil {
		cache, _ = lru.New[string, []byte](DefaultCacheSize)
	}
	return &Exporter{cache: cache}
}

// NewExportCache создает LRU-кэш выгрузок заданного размера
func NewExportCache(size int) (*lru.Cache[string, []byte], error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return lru.New[string, []byte](size)
}

func (e *Exporter) Export(w io.Writer, o Options, img image.Image, ext models.FileExtension) error {
	key, err := cacheKey(o, ext)
	if err != nil {
		return err
	}

	if data, ok := e.cache.Get(key); ok {
		_, err := w.Write(data)
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, ext); err != nil {
		return err
	}

	e.cache.Add(key, buf.Bytes())
	_, err = w.Write(buf.Bytes())
	return err
}

// Encode записывает изображение в выбранном формате
func Encode(w io.Writer, img image.Image, ext models.FileExtension) error {
	var err error
	switch ext {
	case models.ExtensionPNG:
		err = png.Encode(w, img)
	case models.ExtensionJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case models.ExtensionWEBP:
		err = nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ext, err)
	}
	return nil
}

func cacheKey(o Options, ext models.FileExtension) (string, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint options: %w", err)
	}
	h := fnv.New64a()
	h.Write(raw)
	return fmt.Sprintf("%x.%s", h.Sum64(), ext), nil
}
