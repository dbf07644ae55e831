package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrPunder/qrstyle/internal/logger"
	"github.com/bluele/gcache"
	"github.com/google/uuid"
)

// Memstorage хранит сессии в LRU-кэше gcache со скользящим сроком жизни.
// Вытесненная или просроченная сессия закрывает свой конфигуратор.
type Memstorage struct {
	cache   gcache.Cache
	ttl     time.Duration
	factory Factory
	log     logger.Logger

	stop      chan struct{}
	closeOnce sync.Once
	closed    bool
	mu        sync.RWMutex

	hooksMu sync.Mutex
	hooks   []func(id uuid.UUID)
}

func NewMemstorage(size int, ttl time.Duration, factory Factory, log logger.Logger) *Memstorage {
	m := &Memstorage{
		ttl:     ttl,
		factory: factory,
		log:     log,
		stop:    make(chan struct{}),
	}

	teardown := func(key, value interface{}) {
		if s, ok := value.(*Session); ok {
			s.Configurator.Close()
			log.Infof("Session %s torn down", s.ID)
			m.notify(s.ID)
		}
	}

	m.cache = gcache.New(size).
		LRU().
		EvictedFunc(teardown).
		PurgeVisitorFunc(teardown).
		Build()

	return m
}

// OnTeardown подписывает fn на закрытие любой сессии: удаление,
// вытеснение, истечение срока или закрытие хранилища.
// fn вызывается под блокировкой кэша и не должен обращаться к хранилищу.
func (m *Memstorage) OnTeardown(fn func(id uuid.UUID)) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.hooks = append(m.hooks, fn)
}

func (m *Memstorage) notify(id uuid.UUID) {
	m.hooksMu.Lock()
	hooks := m.hooks
	m.hooksMu.Unlock()

	for _, fn := range hooks {
		fn(id)
	}
}

// StartJanitor периодически удаляет просроченные сессии
func (m *Memstorage) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.reap()
			}
		}
	}()
}

// reap обращается ко всем ключам: gcache удаляет просроченные записи при чтении
func (m *Memstorage) reap() {
	for _, key := range m.cache.Keys(false) {
		_, _ = m.cache.GetIFPresent(key)
	}
}

func (m *Memstorage) Create() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}

	c, canvas, err := m.factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create configurator: %w", err)
	}

	s := &Session{
		ID:           uuid.New(),
		Configurator: c,
		Canvas:       canvas,
		CreatedAt:    time.Now(),
	}
	if err := m.set(s); err != nil {
		c.Close()
		return nil, err
	}

	m.log.Infof("Session %s created", s.ID)
	return s, nil
}

func (m *Memstorage) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}

	value, err := m.cache.GetIFPresent(id)
	if err != nil {
		if errors.Is(err, gcache.KeyNotFoundError) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	s := value.(*Session)
	// продлеваем срок жизни при каждом обращении
	if err := m.set(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Memstorage) Delete(id uuid.UUID) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrStorageClosed
	}

	if !m.cache.Remove(id) {
		return ErrSessionNotFound
	}
	return nil
}

func (m *Memstorage) Len() int {
	return m.cache.Len(true)
}

// Close закрывает все живые сессии
func (m *Memstorage) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()

		close(m.stop)
		m.cache.Purge()
	})
}

func (m *Memstorage) set(s *Session) error {
	if m.ttl > 0 {
		return m.cache.SetWithExpire(s.ID, s, m.ttl)
	}
	return m.cache.Set(s.ID, s)
}
