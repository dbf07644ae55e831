package telegrambot

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrPunder/qrstyle/internal/logger"
	"github.com/MrPunder/qrstyle/internal/storage"
	"github.com/google/uuid"
	tele "gopkg.in/telebot.v3"
)

// Ошибки
var (
	ErrNoArguments      = errors.New("не указано значение")
	ErrTooManyArguments = errors.New("слишком много значений")
	ErrUnknownCommand   = errors.New("неизвестная команда")
	ErrNotAnImage       = errors.New("файл не является изображением")
)

const defaultPollerTimeout = 10 * time.Second

// Config представляет конфигурацию Telegram-бота
type Config struct {
	Token       string        // Токен бота
	PollTimeout time.Duration // Таймаут long polling
}

// Bot представляет интерфейс для Telegram-бота
type Bot interface {
	Start() error
	Stop() error
}

// chatSessions связывает чаты с живыми сессиями конфигуратора.
// Запись чата удаляется вместе с его сессией.
type chatSessions struct {
	mu    sync.Mutex
	store storage.Storage
	ids   map[int64]uuid.UUID
	chats map[uuid.UUID]int64
}

func newChatSessions(store storage.Storage) *chatSessions {
	cs := &chatSessions{
		store: store,
		ids:   make(map[int64]uuid.UUID),
		chats: make(map[uuid.UUID]int64),
	}
	// хранилище зовет обработчик под своей блокировкой, а get держит cs.mu
	// во время обращения к хранилищу, поэтому чистим асинхронно
	store.OnTeardown(func(id uuid.UUID) { go cs.forget(id) })
	return cs
}

// forget убирает связь чата с закрытой сессией
func (cs *chatSessions) forget(id uuid.UUID) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	chatID, ok := cs.chats[id]
	if !ok {
		return
	}
	delete(cs.chats, id)
	if cs.ids[chatID] == id {
		delete(cs.ids, chatID)
	}
}

func (cs *chatSessions) len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.ids)
}

// get возвращает сессию чата, создавая новую, если старая истекла
func (cs *chatSessions) get(chatID int64) (*storage.Session, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if id, ok := cs.ids[chatID]; ok {
		sess, err := cs.store.Get(id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, storage.ErrSessionNotFound) {
			return nil, err
		}
		delete(cs.ids, chatID)
		delete(cs.chats, id)
	}

	sess, err := cs.store.Create()
	if err != nil {
		return nil, err
	}
	cs.ids[chatID] = sess.ID
	cs.chats[sess.ID] = chatID
	return sess, nil
}

// reset закрывает сессию чата и создает новую с настройками по умолчанию
func (cs *chatSessions) reset(chatID int64) (*storage.Session, error) {
	cs.mu.Lock()
	if id, ok := cs.ids[chatID]; ok {
		_ = cs.store.Delete(id)
		delete(cs.ids, chatID)
		delete(cs.chats, id)
	}
	cs.mu.Unlock()

	return cs.get(chatID)
}

// NewBot создает бота-конфигуратора
func NewBot(config Config, store storage.Storage, logger logger.Logger) (Bot, error) {
	timeout := config.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollerTimeout
	}

	pref := tele.Settings{
		Token:  config.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бота: %w", err)
	}

	sb := newStyleBot(store, logger)
	sb.bot = bot
	return sb, nil
}
