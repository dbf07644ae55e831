package storage

import (
	"errors"
	"time"

	"github.com/MrPunder/qrstyle/internal/configurator"
	"github.com/MrPunder/qrstyle/internal/renderer"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStorageClosed   = errors.New("storage closed")
)

// Session живой конфигуратор одного пользователя
type Session struct {
	ID           uuid.UUID
	Configurator *configurator.Configurator
	Canvas       *renderer.Canvas
	CreatedAt    time.Time
}

// Factory создает инициализированный конфигуратор для новой сессии
type Factory func() (*configurator.Configurator, *renderer.Canvas, error)

// Storage хранилище живых сессий. Ничего не сохраняется на диск:
// сессия удаляется вместе с конфигуратором.
type Storage interface {
	Create() (*Session, error)
	Get(id uuid.UUID) (*Session, error)
	Delete(id uuid.UUID) error
	Len() int
	OnTeardown(fn func(id uuid.UUID))
	Close()
}
