package models

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DotType вид отрисовки модулей QR-кода
type DotType string

const (
	DotClassy        DotType = "classy"
	DotDots          DotType = "dots"
	DotRounded       DotType = "rounded"
	DotClassyRounded DotType = "classy-rounded"
	DotSquare        DotType = "square"
	DotExtraRounded  DotType = "extra-rounded"
)

// CornerSquareType вид внешней рамки поисковых узоров
type CornerSquareType string

const (
	CornerSquareDot          CornerSquareType = "dot"
	CornerSquareSquare       CornerSquareType = "square"
	CornerSquareExtraRounded CornerSquareType = "extra-rounded"
)

// CornerDotType вид центральной точки поисковых узоров
type CornerDotType string

const (
	CornerDotDot    CornerDotType = "dot"
	CornerDotSquare CornerDotType = "square"
)

// FileExtension формат выгрузки изображения
type FileExtension string

const (
	ExtensionPNG  FileExtension = "png"
	ExtensionJPEG FileExtension = "jpeg"
	ExtensionWEBP FileExtension = "webp"
)

var (
	DotTypes          = []DotType{DotClassy, DotDots, DotRounded, DotClassyRounded, DotSquare, DotExtraRounded}
	CornerSquareTypes = []CornerSquareType{CornerSquareDot, CornerSquareSquare, CornerSquareExtraRounded}
	CornerDotTypes    = []CornerDotType{CornerDotDot, CornerDotSquare}
	FileExtensions    = []FileExtension{ExtensionPNG, ExtensionJPEG, ExtensionWEBP}
)

// Границы ползунков формы
const (
	MinImageSize   = 0.1
	MaxImageSize   = 1.0
	MinImageMargin = 0
	MaxImageMargin = 20
)

// Имена полей формы
const (
	FieldURL               = "url"
	FieldImage             = "image"
	FieldImageSize         = "image-size"
	FieldImageMargin       = "image-margin"
	FieldDotType           = "dot-type"
	FieldDotColor          = "dot-color"
	FieldBackgroundColor   = "background-color"
	FieldCornerSquareType  = "corner-square-type"
	FieldCornerSquareColor = "corner-square-color"
	FieldCornerDotType     = "corner-dot-type"
	FieldCornerDotColor    = "corner-dot-color"
	FieldDownloadExtension = "file-extension"
)

// Значения по умолчанию
const (
	DefaultURL             = "https://ostello.co.in"
	DefaultDotColor        = "#7D23E0"
	DefaultBackgroundColor = "#ffffff"
	DefaultCornerColor     = "#000000"
	DefaultImageSize       = 0.4
	DefaultImageMargin     = 0
)

const (
	dataURLImagePrefix = "data:image/"
	maxDataLength      = 2953 // байтовый режим, уровень L, версия 40
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// StyleConfig набор параметров внешнего вида и содержимого QR-кода
type StyleConfig struct {
	Data               string           `json:"data" yaml:"data"`
	Image              string           `json:"image" yaml:"image"`
	ImageSize          float64          `json:"image_size" yaml:"image_size"`
	ImageMargin        int              `json:"image_margin" yaml:"image_margin"`
	DotsType           DotType          `json:"dots_type" yaml:"dots_type"`
	DotsColor          string           `json:"dots_color" yaml:"dots_color"`
	BackgroundColor    string           `json:"background_color" yaml:"background_color"`
	CornersSquareType  CornerSquareType `json:"corners_square_type" yaml:"corners_square_type"`
	CornersSquareColor string           `json:"corners_square_color" yaml:"corners_square_color"`
	CornersDotType     CornerDotType    `json:"corners_dot_type" yaml:"corners_dot_type"`
	CornersDotColor    string           `json:"corners_dot_color" yaml:"corners_dot_color"`
	Extension          FileExtension    `json:"extension" yaml:"extension"`
}

// DefaultStyleConfig возвращает конфигурацию, с которой открывается форма
func DefaultStyleConfig() StyleConfig {
	return StyleConfig{
		Data:               DefaultURL,
		Image:              "",
		ImageSize:          DefaultImageSize,
		ImageMargin:        DefaultImageMargin,
		DotsType:           DotClassy,
		DotsColor:          DefaultDotColor,
		BackgroundColor:    DefaultBackgroundColor,
		CornersSquareType:  CornerSquareDot,
		CornersSquareColor: DefaultCornerColor,
		CornersDotType:     CornerDotSquare,
		CornersDotColor:    DefaultCornerColor,
		Extension:          ExtensionPNG,
	}
}

// Set приводит сырое значение поля формы к нужному типу и сохраняет его.
// При ошибке конфигурация не меняется.
func (s *StyleConfig) Set(field, raw string) error {
	switch field {
	case FieldURL:
		if len(raw) > maxDataLength {
			return invalid(field, "data is too long to encode")
		}
		s.Data = raw
	case FieldImage:
		if raw != "" && !strings.HasPrefix(raw, dataURLImagePrefix) {
			return invalid(field, "image must be an inline data URL")
		}
		s.Image = raw
	case FieldImageSize:
		v, err := parseNumber(raw)
		if err != nil {
			return invalid(field, err.Error())
		}
		s.ImageSize = ClampImageSize(v)
	case FieldImageMargin:
		v, err := parseNumber(raw)
		if err != nil {
			return invalid(field, err.Error())
		}
		s.ImageMargin = ClampImageMargin(v)
	case FieldDotType:
		t, err := ParseDotType(raw)
		if err != nil {
			return invalid(field, err.Error())
		}
		s.DotsType = t
	case FieldCornerSquareType:
		t, err := ParseCornerSquareType(raw)
		if err != nil {
			return invalid(field, err.Error())
		}
		s.CornersSquareType = t
	case FieldCornerDotType:
		t, err := ParseCornerDotType(raw)
		if err != nil {
			return invalid(field, err.Error())
		}
		s.CornersDotType = t
	case FieldDownloadExtension:
		e, err := ParseFileExtension(raw)
		if err != nil {
			return invalid(field, err.Error())
		}
		s.Extension = e
	case FieldDotColor, FieldBackgroundColor, FieldCornerSquareColor, FieldCornerDotColor:
		if !IsHexColor(raw) {
			return invalid(field, fmt.Sprintf("%q is not a hex color", raw))
		}
		switch field {
		case FieldDotColor:
			s.DotsColor = raw
		case FieldBackgroundColor:
			s.BackgroundColor = raw
		case FieldCornerSquareColor:
			s.CornersSquareColor = raw
		case FieldCornerDotColor:
			s.CornersDotColor = raw
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// Validate проверяет инварианты всей конфигурации (используется при загрузке из файла)
func (s StyleConfig) Validate() error {
	for field, color := range map[string]string{
		FieldDotColor:          s.DotsColor,
		FieldBackgroundColor:   s.BackgroundColor,
		FieldCornerSquareColor: s.CornersSquareColor,
		FieldCornerDotColor:    s.CornersDotColor,
	} {
		if !IsHexColor(color) {
			return invalid(field, fmt.Sprintf("%q is not a hex color", color))
		}
	}
	if _, err := ParseDotType(string(s.DotsType)); err != nil {
		return invalid(FieldDotType, err.Error())
	}
	if _, err := ParseCornerSquareType(string(s.CornersSquareType)); err != nil {
		return invalid(FieldCornerSquareType, err.Error())
	}
	if _, err := ParseCornerDotType(string(s.CornersDotType)); err != nil {
		return invalid(FieldCornerDotType, err.Error())
	}
	if _, err := ParseFileExtension(string(s.Extension)); err != nil {
		return invalid(FieldDownloadExtension, err.Error())
	}
	if s.ImageSize < MinImageSize || s.ImageSize > MaxImageSize {
		return invalid(FieldImageSize, "out of range")
	}
	if s.ImageMargin < MinImageMargin || s.ImageMargin > MaxImageMargin {
		return invalid(FieldImageMargin, "out of range")
	}
	if s.Image != "" && !strings.HasPrefix(s.Image, dataURLImagePrefix) {
		return invalid(FieldImage, "image must be an inline data URL")
	}
	return nil
}

func IsHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

func ParseDotType(s string) (DotType, error) {
	for _, t := range DotTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown dot type %q", s)
}

func ParseCornerSquareType(s string) (CornerSquareType, error) {
	for _, t := range CornerSquareTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown corner square type %q", s)
}

func ParseCornerDotType(s string) (CornerDotType, error) {
	for _, t := range CornerDotTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown corner dot type %q", s)
}

func ParseFileExtension(s string) (FileExtension, error) {
	for _, e := range FileExtensions {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown file extension %q", s)
}

// ClampImageSize ограничивает размер логотипа диапазоном ползунка
func ClampImageSize(v float64) float64 {
	return math.Min(MaxImageSize, math.Max(MinImageSize, v))
}

// ClampImageMargin округляет отступ до пикселя и ограничивает диапазоном ползунка
func ClampImageMargin(v float64) int {
	// сначала границы: int() от числа вне диапазона int не определен
	v = math.Min(MaxImageMargin, math.Max(MinImageMargin, v))
	return int(math.Round(v))
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}

func invalid(field, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrInvalidValue, field, reason)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
