package renderer

import (
	"image"
	"math"

	"github.com/MrPunder/qrstyle/internal/models"
	"github.com/fogleman/gg"
)

// finderSize размер поискового узора в модулях
const finderSize = 7

// layout геометрия размещения матрицы на холсте
type layout struct {
	count   int
	dot     float64
	originX float64
	originY float64
	// область, скрытая под логотипом (в модулях)
	hideX int
	hideY int
}

func newLayout(o Options, count int, logo image.Image) layout {
	minSize := math.Min(float64(o.Width), float64(o.Height))
	dot := math.Floor(minSize / float64(count))
	if dot < 1 {
		dot = 1
	}
	l := layout{
		count:   count,
		dot:     dot,
		originX: math.Floor((float64(o.Width) - float64(count)*dot) / 2),
		originY: math.Floor((float64(o.Height) - float64(count)*dot) / 2),
	}
	if logo != nil {
		l.hideX, l.hideY = hiddenArea(count, o.ImageOptions.ImageSize, logo.Bounds())
	}
	return l
}

// hiddenArea вычисляет, сколько модулей по каждой оси занимает логотип.
// Доля imageSize задает площадь, пропорции берутся от самого изображения.
// Размер по оси имеет ту же четность, что и матрица, чтобы логотип был по центру.
func hiddenArea(count int, imageSize float64, b image.Rectangle) (int, int) {
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0, 0
	}
	maxAxis := count - 2*finderSize
	if maxAxis <= 0 {
		return 0, 0
	}

	area := imageSize * float64(count*count)
	ratio := float64(b.Dx()) / float64(b.Dy())
	hx := fitAxis(int(math.Floor(math.Sqrt(area*ratio))), count, maxAxis)
	hy := fitAxis(int(math.Floor(math.Sqrt(area/ratio))), count, maxAxis)
	return hx, hy
}

func fitAxis(v, count, maxAxis int) int {
	if v > maxAxis {
		v = maxAxis
	}
	if (count-v)%2 != 0 {
		v--
	}
	if v < 0 {
		return 0
	}
	return v
}

func (l layout) hidden(x, y int) bool {
	if l.hideX == 0 || l.hideY == 0 {
		return false
	}
	x0 := (l.count - l.hideX) / 2
	y0 := (l.count - l.hideY) / 2
	return x >= x0 && x < x0+l.hideX && y >= y0 && y < y0+l.hideY
}

func inFinder(count, x, y int) bool {
	return (x < finderSize && y < finderSize) ||
		(x >= count-finderSize && y < finderSize) ||
		(x < finderSize && y >= count-finderSize)
}

// draw рисует QR-код с заданным стилем на новом холсте
func draw(o Options, m Matrix, logo image.Image, logos *logoCache) image.Image {
	dc := gg.NewContext(o.Width, o.Height)
	dc.SetHexColor(o.BackgroundOptions.Color)
	dc.Clear()

	if m == nil || m.Size() == 0 {
		return dc.Image()
	}

	l := newLayout(o, m.Size(), logo)
	hide := o.hideBackgroundDots() && logo != nil

	filled := func(x, y int) bool {
		if x < 0 || y < 0 || x >= l.count || y >= l.count {
			return false
		}
		if inFinder(l.count, x, y) || (hide && l.hidden(x, y)) {
			return false
		}
		return m.Get(x, y)
	}

	dc.SetHexColor(o.DotsOptions.Color)
	for y := 0; y < l.count; y++ {
		for x := 0; x < l.count; x++ {
			if !filled(x, y) {
				continue
			}
			px := l.originX + float64(x)*l.dot
			py := l.originY + float64(y)*l.dot
			drawDot(dc, o.DotsOptions.Type, px, py, l.dot, neighbors{
				left:   filled(x-1, y),
				right:  filled(x+1, y),
				top:    filled(x, y-1),
				bottom: filled(x, y+1),
			})
		}
	}
	dc.Fill()

	for _, c := range [][2]int{{0, 0}, {l.count - finderSize, 0}, {0, l.count - finderSize}} {
		px := l.originX + float64(c[0])*l.dot
		py := l.originY + float64(c[1])*l.dot
		drawCornerSquare(dc, o.CornersSquareOptions, px, py, l.dot)
		drawCornerDot(dc, o.CornersDotOptions, px+2*l.dot, py+2*l.dot, l.dot)
	}

	if logo != nil && l.hideX > 0 && l.hideY > 0 {
		drawLogo(dc, o, l, logo, logos)
	}

	return dc.Image()
}

type neighbors struct {
	left, right, top, bottom bool
}

func (n neighbors) count() int {
	c := 0
	for _, v := range []bool{n.left, n.right, n.top, n.bottom} {
		if v {
			c++
		}
	}
	return c
}

func drawDot(dc *gg.Context, t models.DotType, x, y, s float64, n neighbors) {
	switch t {
	case models.DotDots:
		dc.DrawCircle(x+s/2, y+s/2, s/2)
	case models.DotRounded, models.DotExtraRounded:
		if n.count() == 0 {
			dc.DrawCircle(x+s/2, y+s/2, s/2)
			return
		}
		tl := !n.left && !n.top
		tr := !n.right && !n.top
		br := !n.right && !n.bottom
		bl := !n.left && !n.bottom
		r := s / 2
		// одиночный свободный угол у extra-rounded скругляется на весь модуль
		if t == models.DotExtraRounded && countTrue(tl, tr, br, bl) == 1 {
			r = s
		}
		drawRoundedSquare(dc, x, y, s, radius(tl, r), radius(tr, r), radius(br, r), radius(bl, r))
	case models.DotClassy, models.DotClassyRounded:
		if n.count() == 0 {
			drawRoundedSquare(dc, x, y, s, s/2, 0, s/2, 0)
			return
		}
		r := s / 2
		if t == models.DotClassyRounded {
			r = s
		}
		tl := !n.left && !n.top
		br := !n.right && !n.bottom
		drawRoundedSquare(dc, x, y, s, radius(tl, r), 0, radius(br, r), 0)
	default:
		dc.DrawRectangle(x, y, s, s)
	}
}

func drawCornerSquare(dc *gg.Context, o CornersSquareOptions, x, y, dot float64) {
	size := finderSize * dot
	dc.SetHexColor(o.Color)
	dc.SetFillRuleEvenOdd()
	switch o.Type {
	case models.CornerSquareDot:
		dc.DrawCircle(x+size/2, y+size/2, size/2)
		dc.DrawCircle(x+size/2, y+size/2, size/2-dot)
	case models.CornerSquareExtraRounded:
		dc.DrawRoundedRectangle(x, y, size, size, 2.5*dot)
		dc.DrawRoundedRectangle(x+dot, y+dot, size-2*dot, size-2*dot, 1.5*dot)
	default:
		dc.DrawRectangle(x, y, size, size)
		dc.DrawRectangle(x+dot, y+dot, size-2*dot, size-2*dot)
	}
	dc.Fill()
	dc.SetFillRuleWinding()
}

func drawCornerDot(dc *gg.Context, o CornersDotOptions, x, y, dot float64) {
	size := 3 * dot
	dc.SetHexColor(o.Color)
	if o.Type == models.CornerDotDot {
		dc.DrawCircle(x+size/2, y+size/2, size/2)
	} else {
		dc.DrawRectangle(x, y, size, size)
	}
	dc.Fill()
}

// drawLogo вписывает логотип в скрытую область с учетом отступа
func drawLogo(dc *gg.Context, o Options, l layout, logo image.Image, logos *logoCache) {
	margin := float64(o.ImageOptions.Margin)
	boxW := float64(l.hideX)*l.dot - 2*margin
	boxH := float64(l.hideY)*l.dot - 2*margin
	if boxW < 1 || boxH < 1 {
		return
	}

	b := logo.Bounds()
	scale := math.Min(boxW/float64(b.Dx()), boxH/float64(b.Dy()))
	w := uint(math.Max(1, math.Floor(float64(b.Dx())*scale)))
	h := uint(math.Max(1, math.Floor(float64(b.Dy())*scale)))
	scaled := logos.fit(logo, w, h)

	cx := l.originX + float64(l.count)*l.dot/2
	cy := l.originY + float64(l.count)*l.dot/2
	dc.DrawImageAnchored(scaled, int(cx), int(cy), 0.5, 0.5)
}

// drawRoundedSquare квадрат с отдельным радиусом для каждого угла
func drawRoundedSquare(dc *gg.Context, x, y, s, tl, tr, br, bl float64) {
	dc.NewSubPath()
	corner(dc, x+tl, y+tl, tl, math.Pi, 1.5*math.Pi, x, y)
	corner(dc, x+s-tr, y+tr, tr, 1.5*math.Pi, 2*math.Pi, x+s, y)
	corner(dc, x+s-br, y+s-br, br, 0, 0.5*math.Pi, x+s, y+s)
	corner(dc, x+bl, y+s-bl, bl, 0.5*math.Pi, math.Pi, x, y+s)
	dc.ClosePath()
}

func corner(dc *gg.Context, cx, cy, r, a1, a2, px, py float64) {
	if r > 0 {
		dc.DrawArc(cx, cy, r, a1, a2)
		return
	}
	dc.LineTo(px, py)
}

func radius(rounded bool, r float64) float64 {
	if rounded {
		return r
	}
	return 0
}

func countTrue(vs ...bool) int {
	c := 0
	for _, v := range vs {
		if v {
			c++
		}
	}
	return c
}
