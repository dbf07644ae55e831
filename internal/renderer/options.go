package renderer

import "github.com/MrPunder/qrstyle/internal/models"

// Параметры, которые задаются при создании и не меняются из формы
const (
	DefaultWidth       = 500
	DefaultHeight      = 500
	DefaultCrossOrigin = "anonymous"
	DefaultImageMargin = 20
)

type ImageOptions struct {
	CrossOrigin        string  `json:"crossOrigin"`
	Margin             int     `json:"margin"`
	HideBackgroundDots *bool   `json:"hideBackgroundDots"`
	ImageSize          float64 `json:"imageSize"`
}

type DotsOptions struct {
	Type  models.DotType `json:"type"`
	Color string         `json:"color"`
}

type BackgroundOptions struct {
	Color string `json:"color"`
}

type CornersSquareOptions struct {
	Type  models.CornerSquareType `json:"type"`
	Color string                  `json:"color"`
}

type CornersDotOptions struct {
	Type  models.CornerDotType `json:"type"`
	Color string               `json:"color"`
}

// Options конфигурация рендерера
type Options struct {
	Width                int                  `json:"width"`
	Height               int                  `json:"height"`
	Data                 string               `json:"data"`
	Image                string               `json:"image"`
	ImageOptions         ImageOptions         `json:"imageOptions"`
	DotsOptions          DotsOptions          `json:"dotsOptions"`
	BackgroundOptions    BackgroundOptions    `json:"backgroundOptions"`
	CornersSquareOptions CornersSquareOptions `json:"cornersSquareOptions"`
	CornersDotOptions    CornersDotOptions    `json:"cornersDotOptions"`
}

// DefaultOptions начальная конфигурация рендерера
func DefaultOptions() Options {
	hide := true
	s := models.DefaultStyleConfig()
	o := FromStyle(s)
	o.Width = DefaultWidth
	o.Height = DefaultHeight
	o.ImageOptions.CrossOrigin = DefaultCrossOrigin
	o.ImageOptions.HideBackgroundDots = &hide
	o.ImageOptions.Margin = DefaultImageMargin
	return o
}

// FromStyle переносит пользовательские параметры в конфигурацию рендерера.
// Размеры холста и параметры загрузки логотипа остаются нулевыми.
func FromStyle(s models.StyleConfig) Options {
	return Options{
		Data:  s.Data,
		Image: s.Image,
		ImageOptions: ImageOptions{
			Margin:    s.ImageMargin,
			ImageSize: s.ImageSize,
		},
		DotsOptions:          DotsOptions{Type: s.DotsType, Color: s.DotsColor},
		BackgroundOptions:    BackgroundOptions{Color: s.BackgroundColor},
		CornersSquareOptions: CornersSquareOptions{Type: s.CornersSquareType, Color: s.CornersSquareColor},
		CornersDotOptions:    CornersDotOptions{Type: s.CornersDotType, Color: s.CornersDotColor},
	}
}

// merge накладывает обновление на текущую конфигурацию. Размеры холста,
// crossOrigin и hideBackgroundDots сохраняются, если в обновлении не заданы.
// Пустые строки стиля тоже не затирают текущие значения, кроме data и image:
// пустое изображение убирает логотип.
func merge(cur, upd Options) Options {
	out := cur

	if upd.Width > 0 {
		out.Width = upd.Width
	}
	if upd.Height > 0 {
		out.Height = upd.Height
	}
	if upd.ImageOptions.CrossOrigin != "" {
		out.ImageOptions.CrossOrigin = upd.ImageOptions.CrossOrigin
	}
	if upd.ImageOptions.HideBackgroundDots != nil {
		v := *upd.ImageOptions.HideBackgroundDots
		out.ImageOptions.HideBackgroundDots = &v
	}

	out.Data = upd.Data
	out.Image = upd.Image
	out.ImageOptions.Margin = upd.ImageOptions.Margin
	out.ImageOptions.ImageSize = upd.ImageOptions.ImageSize

	out.DotsOptions.Type = pick(cur.DotsOptions.Type, upd.DotsOptions.Type)
	out.DotsOptions.Color = pick(cur.DotsOptions.Color, upd.DotsOptions.Color)
	out.BackgroundOptions.Color = pick(cur.BackgroundOptions.Color, upd.BackgroundOptions.Color)
	out.CornersSquareOptions.Type = pick(cur.CornersSquareOptions.Type, upd.CornersSquareOptions.Type)
	out.CornersSquareOptions.Color = pick(cur.CornersSquareOptions.Color, upd.CornersSquareOptions.Color)
	out.CornersDotOptions.Type = pick(cur.CornersDotOptions.Type, upd.CornersDotOptions.Type)
	out.CornersDotOptions.Color = pick(cur.CornersDotOptions.Color, upd.CornersDotOptions.Color)

	return out
}

func pick[T ~string](cur, upd T) T {
	if upd == "" {
		return cur
	}
	return upd
}

func (o Options) hideBackgroundDots() bool {
	return o.ImageOptions.HideBackgroundDots != nil && *o.ImageOptions.HideBackgroundDots
}
