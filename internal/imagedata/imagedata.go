// Package imagedata converts user-selected image files into inline data URLs
// and decodes such URLs back into images.
package imagedata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/vincent-petithory/dataurl"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxSize ограничение размера загружаемого логотипа
	DefaultMaxSize int64 = 5 << 20
	// MaxDimension ограничение ширины и высоты логотипа в пикселях.
	// Сжатый файл может быть маленьким при огромном растре.
	MaxDimension = 4096
)

var (
	ErrEmptyFile       = errors.New("image file is empty")
	ErrTooLarge        = errors.New("image file is too large")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrReadFailed      = errors.New("image file cannot be read")
	ErrUndecodable     = errors.New("image data cannot be decoded")
)

var supportedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Result итог однократного преобразования файла
type Result struct {
	URL string
	Err error
}

// FromFile читает файл в отдельной горутине и возвращает канал,
// в который ровно один раз придет data URL или ошибка.
func FromFile(ctx context.Context, r io.Reader, maxSize int64) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		if maxSize <= 0 {
			maxSize = DefaultMaxSize
		}

		data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
		if err != nil {
			out <- Result{Err: fmt.Errorf("%w: %v", ErrReadFailed, err)}
			return
		}
		if int64(len(data)) > maxSize {
			out <- Result{Err: fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxSize)}
			return
		}
		if err := ctx.Err(); err != nil {
			out <- Result{Err: err}
			return
		}

		url, err := Encode(data)
		out <- Result{URL: url, Err: err}
	}()

	return out
}

// Encode упаковывает содержимое файла изображения в base64 data URL
func Encode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	contentType := http.DetectContentType(data)
	if !supportedTypes[contentType] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if err := checkBounds(data); err != nil {
		return "", err
	}

	return dataurl.New(data, contentType).String(), nil
}

// Decode разбирает data URL и декодирует изображение
func Decode(s string) (image.Image, error) {
	du, err := dataurl.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad data URL: %v", ErrUndecodable, err)
	}
	if !supportedTypes[du.ContentType()] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, du.ContentType())
	}
	if err := checkBounds(du.Data); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(du.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return img, nil
}

// checkBounds читает только заголовок и отсекает слишком большие растры
// до полного декодирования
func checkBounds(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrUndecodable, cfg.Width, cfg.Height)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %dx%d pixels",
			ErrTooLarge, cfg.Width, cfg.Height, MaxDimension, MaxDimension)
	}
	return nil
}
