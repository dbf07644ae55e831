package renderer

import (
	"errors"
	"fmt"

	"github.com/boombuler/barcode/qr"
	"github.com/skip2/go-qrcode"
)

// Level уровень коррекции ошибок
type Level int

const (
	LevelQ Level = iota // 25%
	LevelH              // 30%, используется при встроенном логотипе
)

// Имена кодировщиков в конфигурации
const (
	EncoderBarcode = "barcode"
	EncoderSkip2   = "skip2"
)

var ErrUnknownEncoder = errors.New("unknown encoder")

// Matrix битовая матрица QR-кода без тихой зоны
type Matrix interface {
	Size() int
	Get(x, y int) bool
}

// Encoder строит матрицу модулей для строки данных
type Encoder interface {
	Encode(data string, level Level) (Matrix, error)
}

// NewEncoder возвращает кодировщик по имени из конфигурации
func NewEncoder(name string) (Encoder, error) {
	switch name {
	case "", EncoderBarcode:
		return BarcodeEncoder{}, nil
	case EncoderSkip2:
		return Skip2Encoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoder, name)
	}
}

type boolMatrix [][]bool

func (m boolMatrix) Size() int         { return len(m) }
func (m boolMatrix) Get(x, y int) bool { return m[y][x] }

// BarcodeEncoder кодирует через boombuler/barcode
type BarcodeEncoder struct{}

func (BarcodeEncoder) Encode(data string, level Level) (Matrix, error) {
	ec := qr.Q
	if level == LevelH {
		ec = qr.H
	}

	code, err := qr.Encode(data, ec, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("QR encoding error: %w", err)
	}

	size := code.Bounds().Dx()
	m := make(boolMatrix, size)
	for y := 0; y < size; y++ {
		m[y] = make([]bool, size)
		for x := 0; x < size; x++ {
			r, _, _, _ := code.At(x, y).RGBA()
			m[y][x] = r == 0
		}
	}
	return m, nil
}

// Skip2Encoder кодирует через skip2/go-qrcode
type Skip2Encoder struct{}

func (Skip2Encoder) Encode(data string, level Level) (Matrix, error) {
	rl := qrcode.High
	if level == LevelH {
		rl = qrcode.Highest
	}

	q, err := qrcode.New(data, rl)
	if err != nil {
		return nil, fmt.Errorf("QR encoding error: %w", err)
	}
	q.DisableBorder = true

	return boolMatrix(q.Bitmap()), nil
}
