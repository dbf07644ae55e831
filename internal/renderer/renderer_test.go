package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/MrPunder/qrstyle/internal/imagedata"
	"github.com/MrPunder/qrstyle/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

var (
	green = color.RGBA{G: 200, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= 2 && d(a.G, b.G) <= 2 && d(a.B, b.B) <= 2 && d(a.A, b.A) <= 2
}

func solidLogo(t *testing.T, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	url, err := imagedata.Encode(buf.Bytes())
	require.NoError(t, err)
	return url
}

func newTestRenderer(t *testing.T, o Options) *QRRenderer {
	t.Helper()
	r, err := New(o, BarcodeEncoder{}, nil)
	require.NoError(t, err)
	return r
}

func TestNewUsesDefaults(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions())

	o := r.Options()
	assert.Equal(t, 500, o.Width)
	assert.Equal(t, 500, o.Height)
	assert.Equal(t, "https://ostello.co.in", o.Data)
	assert.Equal(t, models.DotClassy, o.DotsOptions.Type)
	assert.Equal(t, "#7D23E0", o.DotsOptions.Color)
	assert.Equal(t, "#ffffff", o.BackgroundOptions.Color)
	assert.Equal(t, "anonymous", o.ImageOptions.CrossOrigin)
	assert.Equal(t, 20, o.ImageOptions.Margin)
	require.NotNil(t, o.ImageOptions.HideBackgroundDots)
	assert.True(t, *o.ImageOptions.HideBackgroundDots)

	assert.Equal(t, image.Rect(0, 0, 500, 500), r.Image().Bounds())
}

func TestEmptyDataDrawsBackgroundOnly(t *testing.T) {
	o := DefaultOptions()
	o.Data = ""
	o.BackgroundOptions.Color = "#0000ff"
	r := newTestRenderer(t, o)

	img := r.Image()
	assert.Equal(t, blue, rgbaAt(img, 0, 0))
	assert.Equal(t, blue, rgbaAt(img, 250, 250))
	assert.Equal(t, blue, rgbaAt(img, 499, 499))
}

func TestColorsReachCanvas(t *testing.T) {
	o := DefaultOptions()
	o.DotsOptions = DotsOptions{Type: models.DotSquare, Color: "#00c800"}
	o.CornersSquareOptions = CornersSquareOptions{Type: models.CornerSquareSquare, Color: "#ff0000"}
	o.CornersDotOptions = CornersDotOptions{Type: models.CornerDotSquare, Color: "#0000ff"}
	r := newTestRenderer(t, o)
	img := r.Image()

	m, err := BarcodeEncoder{}.Encode(o.Data, LevelQ)
	require.NoError(t, err)
	l := newLayout(r.Options(), m.Size(), nil)
	center := func(x, y int) (int, int) {
		return int(l.originX + (float64(x)+0.5)*l.dot), int(l.originY + (float64(y)+0.5)*l.dot)
	}

	// внешняя рамка поискового узора
	x, y := center(0, 0)
	assert.Equal(t, red, rgbaAt(img, x, y))
	// центральная точка
	x, y = center(3, 3)
	assert.Equal(t, blue, rgbaAt(img, x, y))

	// любой закрашенный модуль вне поисковых узоров
	found := false
	for my := 0; my < m.Size() && !found; my++ {
		for mx := 0; mx < m.Size() && !found; mx++ {
			if inFinder(m.Size(), mx, my) || !m.Get(mx, my) {
				continue
			}
			x, y = center(mx, my)
			assert.Equal(t, green, rgbaAt(img, x, y))
			found = true
		}
	}
	assert.True(t, found)
}

func TestAllDotTypesRender(t *testing.T) {
	for _, dt := range models.DotTypes {
		for _, cs := range models.CornerSquareTypes {
			for _, cd := range models.CornerDotTypes {
				o := DefaultOptions()
				o.DotsOptions.Type = dt
				o.CornersSquareOptions.Type = cs
				o.CornersDotOptions.Type = cd
				r, err := New(o, BarcodeEncoder{}, nil)
				require.NoError(t, err, "%s/%s/%s", dt, cs, cd)
				assert.NotNil(t, r.Image())
			}
		}
	}
}

func TestUpdateMerge(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions())

	upd := FromStyle(models.DefaultStyleConfig())
	upd.Data = "https://example.com"
	upd.ImageOptions.Margin = 0
	require.NoError(t, r.Update(upd))

	o := r.Options()
	assert.Equal(t, "https://example.com", o.Data)
	assert.Equal(t, 0, o.ImageOptions.Margin, "zero margin must be applied")
	assert.Equal(t, 500, o.Width, "canvas size is kept")
	assert.Equal(t, "anonymous", o.ImageOptions.CrossOrigin)
	assert.True(t, *o.ImageOptions.HideBackgroundDots)
}

func TestLogoShownAndCleared(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions())

	upd := FromStyle(models.DefaultStyleConfig())
	upd.Image = solidLogo(t, green)
	require.NoError(t, r.Update(upd))
	assert.True(t, near(green, rgbaAt(r.Image(), 250, 250)), "logo must be drawn in the center")

	upd.Image = ""
	require.NoError(t, r.Update(upd))
	assert.Empty(t, r.Options().Image)
	assert.False(t, near(green, rgbaAt(r.Image(), 250, 250)), "cleared logo must not be reused")
}

func TestUpdateFailureKeepsState(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions())
	before := r.Options()
	canvas := NewCanvas()
	r.Attach(canvas)
	_, v := canvas.Image()

	upd := FromStyle(models.DefaultStyleConfig())
	upd.Data = "https://changed.example"
	upd.Image = "data:image/png;base64,aGVsbG8="
	assert.ErrorIs(t, r.Update(upd), ErrInvalidInput)

	assert.Equal(t, before.Data, r.Options().Data)
	assert.Empty(t, r.Options().Image)
	_, v2 := canvas.Image()
	assert.Equal(t, v, v2, "surface must not be redrawn on failure")
}

func TestInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		image string
	}{
		{"BadBase64", "https://example.com", "data:image/png;base64,!!!notbase64"},
		{"DataTooLongWithLogo", strings.Repeat("a", 2000), "logo"},
		{"DataTooLong", strings.Repeat("a", 3000), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(t, DefaultOptions())

			upd := FromStyle(models.DefaultStyleConfig())
			upd.Data = tt.data
			upd.Image = tt.image
			if tt.image == "logo" {
				upd.Image = solidLogo(t, green)
			}
			assert.ErrorIs(t, r.Update(upd), ErrInvalidInput)
		})
	}
}

func TestLogoDecodedOnce(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions())

	calls := 0
	r.logos.decode = func(s string) (image.Image, error) {
		calls++
		return imagedata.Decode(s)
	}

	upd := FromStyle(models.DefaultStyleConfig())
	upd.Image = solidLogo(t, green)
	require.NoError(t, r.Update(upd))

	for _, c := range []string{"#111111", "#222222", "#333333"} {
		upd.DotsOptions.Color = c
		require.NoError(t, r.Update(upd))
	}
	assert.Equal(t, 1, calls, "unchanged logo must not be decoded again")
	assert.True(t, near(green, rgbaAt(r.Image(), 250, 250)))

	upd.Image = solidLogo(t, red)
	require.NoError(t, r.Update(upd))
	assert.Equal(t, 2, calls)
	assert.True(t, near(red, rgbaAt(r.Image(), 250, 250)))
}

func TestAttachShowsEveryUpdate(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions())
	canvas := NewCanvas()
	r.Attach(canvas)

	img, v := canvas.Image()
	require.NotNil(t, img)
	assert.Equal(t, uint64(1), v)

	upd := FromStyle(models.DefaultStyleConfig())
	upd.BackgroundOptions.Color = "#ff0000"
	require.NoError(t, r.Update(upd))

	img, v = canvas.Image()
	assert.Equal(t, uint64(2), v)
	assert.Same(t, r.Image(), img)
}

func TestExport(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions())

	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Export(&buf, models.ExtensionPNG))
		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 500, img.Bounds().Dx())
	})
	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Export(&buf, models.ExtensionJPEG))
		img, err := jpeg.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 500, img.Bounds().Dx())
	})
	t.Run("webp", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Export(&buf, models.ExtensionWEBP))
		img, err := webp.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 500, img.Bounds().Dx())
	})
	t.Run("unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		err := r.Export(&buf, models.FileExtension("gif"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Zero(t, buf.Len())
	})
}

func TestExportCache(t *testing.T) {
	cache, err := NewExportCache(4)
	require.NoError(t, err)
	r, err := New(DefaultOptions(), BarcodeEncoder{}, NewExporter(cache))
	require.NoError(t, err)

	var first, second bytes.Buffer
	require.NoError(t, r.Export(&first, models.ExtensionPNG))
	assert.Equal(t, 1, cache.Len())
	require.NoError(t, r.Export(&second, models.ExtensionPNG))
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, first.Bytes(), second.Bytes())

	upd := FromStyle(models.DefaultStyleConfig())
	upd.DotsOptions.Color = "#123456"
	require.NoError(t, r.Update(upd))
	require.NoError(t, r.Export(&second, models.ExtensionPNG))
	assert.Equal(t, 2, cache.Len())
}

func TestEncoders(t *testing.T) {
	for _, name := range []string{EncoderBarcode, EncoderSkip2} {
		t.Run(name, func(t *testing.T) {
			enc, err := NewEncoder(name)
			require.NoError(t, err)

			m, err := enc.Encode("https://example.com", LevelQ)
			require.NoError(t, err)
			require.GreaterOrEqual(t, m.Size(), 21)
			assert.True(t, m.Get(0, 0), "finder pattern corner")
			assert.False(t, m.Get(7, 7), "finder separator")
			assert.True(t, m.Get(3, 3), "finder center")
		})
	}

	_, err := NewEncoder("zxing")
	assert.ErrorIs(t, err, ErrUnknownEncoder)
}

func TestHiddenArea(t *testing.T) {
	hx, hy := hiddenArea(29, 0.4, image.Rect(0, 0, 40, 40))
	assert.Equal(t, 15, hx)
	assert.Equal(t, hx, hy)
	assert.Equal(t, 0, (29-hx)%2)

	hx, hy = hiddenArea(25, 0.1, image.Rect(0, 0, 80, 40))
	assert.Greater(t, hx, hy)
	assert.Equal(t, 0, (25-hx)%2)
	assert.Equal(t, 0, (25-hy)%2)
}
