package renderer

import (
	"image"

	"github.com/MrPunder/qrstyle/internal/imagedata"
	"github.com/nfnt/resize"
)

// logoCache хранит последний декодированный логотип, чтобы правка
// любого другого поля не декодировала и не масштабировала его заново
type logoCache struct {
	url    string
	img    image.Image
	w, h   uint
	scaled image.Image
	decode func(string) (image.Image, error)
}

func newLogoCache() *logoCache {
	return &logoCache{decode: imagedata.Decode}
}

// load возвращает логотип для data URL, декодируя только новый URL
func (lc *logoCache) load(url string) (image.Image, error) {
	if url == "" {
		return nil, nil
	}
	if url == lc.url && lc.img != nil {
		return lc.img, nil
	}

	img, err := lc.decode(url)
	if err != nil {
		return nil, err
	}
	lc.url, lc.img = url, img
	lc.w, lc.h, lc.scaled = 0, 0, nil
	return img, nil
}

// fit масштабирует логотип под размер w×h, повторно используя прошлый результат
func (lc *logoCache) fit(logo image.Image, w, h uint) image.Image {
	if logo != lc.img {
		return resize.Resize(w, h, logo, resize.Lanczos3)
	}
	if lc.scaled == nil || lc.w != w || lc.h != h {
		lc.scaled = resize.Resize(w, h, logo, resize.Lanczos3)
		lc.w, lc.h = w, h
	}
	return lc.scaled
}
