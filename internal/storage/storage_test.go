package storage

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrPunder/qrstyle/internal/config"
	"github.com/MrPunder/qrstyle/internal/configurator"
	"github.com/MrPunder/qrstyle/internal/models"
	"github.com/MrPunder/qrstyle/internal/renderer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockLogger struct{}

func (m *MockLogger) Info(msg string)                   {}
func (m *MockLogger) Infof(format string, args ...any)  {}
func (m *MockLogger) Error(msg string)                  {}
func (m *MockLogger) Errorf(format string, args ...any) {}
func (m *MockLogger) Debug(msg string)                  {}
func (m *MockLogger) Debugf(format string, args ...any) {}

func newFactory(t *testing.T) Factory {
	t.Helper()
	conf := config.Default()
	conf.Renderer.Width = 120
	conf.Renderer.Height = 120
	b, err := configurator.NewBuilder(conf, &MockLogger{})
	require.NoError(t, err)
	return b.Build
}

func TestCreateAndGet(t *testing.T) {
	m := NewMemstorage(4, time.Hour, newFactory(t), &MockLogger{})
	defer m.Close()

	s, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.NotNil(t, s.Canvas)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, got.Configurator.UpdateField(models.FieldURL, "https://example.com"))
	again, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", again.Configurator.Snapshot().Data)
}

func TestGetUnknown(t *testing.T) {
	m := NewMemstorage(4, time.Hour, newFactory(t), &MockLogger{})
	defer m.Close()

	_, err := m.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(uuid.New()), ErrSessionNotFound)
}

func TestDeleteClosesConfigurator(t *testing.T) {
	m := NewMemstorage(4, time.Hour, newFactory(t), &MockLogger{})
	defer m.Close()

	s, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, m.Delete(s.ID))
	assert.Equal(t, 0, m.Len())

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.Configurator.UpdateField(models.FieldURL, "x"), configurator.ErrClosed)
}

func TestEvictionClosesOldest(t *testing.T) {
	m := NewMemstorage(2, time.Hour, newFactory(t), &MockLogger{})
	defer m.Close()

	first, err := m.Create()
	require.NoError(t, err)
	_, err = m.Create()
	require.NoError(t, err)
	_, err = m.Create()
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	_, err = m.Get(first.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, first.Configurator.ClearImage(), configurator.ErrClosed)
}

func TestExpiration(t *testing.T) {
	m := NewMemstorage(4, 50*time.Millisecond, newFactory(t), &MockLogger{})
	defer m.Close()

	s, err := m.Create()
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.Configurator.ClearImage(), configurator.ErrClosed)
}

func TestJanitorReapsExpired(t *testing.T) {
	m := NewMemstorage(4, 30*time.Millisecond, newFactory(t), &MockLogger{})
	defer m.Close()
	m.StartJanitor(10 * time.Millisecond)

	s, err := m.Create()
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return errors.Is(s.Configurator.ClearImage(), configurator.ErrClosed)
	}, time.Second, 10*time.Millisecond)
}

func TestCloseStorage(t *testing.T) {
	m := NewMemstorage(4, time.Hour, newFactory(t), &MockLogger{})

	s, err := m.Create()
	require.NoError(t, err)

	m.Close()
	m.Close()

	assert.ErrorIs(t, s.Configurator.ClearImage(), configurator.ErrClosed)
	_, err = m.Create()
	assert.ErrorIs(t, err, ErrStorageClosed)
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrStorageClosed)
}

func TestFactoryError(t *testing.T) {
	failing := func() (*configurator.Configurator, *renderer.Canvas, error) {
		return nil, nil, errors.New("boom")
	}
	m := NewMemstorage(4, time.Hour, failing, &MockLogger{})
	defer m.Close()

	_, err := m.Create()
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestOnTeardown(t *testing.T) {
	m := NewMemstorage(2, time.Hour, newFactory(t), &MockLogger{})

	var mu sync.Mutex
	var gone []uuid.UUID
	m.OnTeardown(func(id uuid.UUID) {
		mu.Lock()
		defer mu.Unlock()
		gone = append(gone, id)
	})
	seen := func() []uuid.UUID {
		mu.Lock()
		defer mu.Unlock()
		return append([]uuid.UUID(nil), gone...)
	}

	deleted, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, m.Delete(deleted.ID))
	assert.Equal(t, []uuid.UUID{deleted.ID}, seen())

	evicted, err := m.Create()
	require.NoError(t, err)
	second, err := m.Create()
	require.NoError(t, err)
	third, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{deleted.ID, evicted.ID}, seen())

	m.Close()
	assert.ElementsMatch(t, []uuid.UUID{deleted.ID, evicted.ID, second.ID, third.ID}, seen())
}
