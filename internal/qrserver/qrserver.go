package qrserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MrPunder/qrstyle/internal/logger"
)

type middlewareFunc func(next http.Handler) http.Handler

// QRServer HTTP сервер конфигуратора с цепочкой middleware
type QRServer struct {
	Log        logger.Logger
	middlwares []middlewareFunc
	mux        http.Handler
	address    string

	mu     sync.Mutex
	server *http.Server
}

func NewQRServer(address string, mux http.Handler, log logger.Logger) *QRServer {
	return &QRServer{
		address: address,
		mux:     mux,
		Log:     log,
	}
}

// AddMidleware добавляет обработчики; последний добавленный выполняется первым
func (s *QRServer) AddMidleware(funcs ...middlewareFunc) {
	s.middlwares = append(s.middlwares, funcs...)
}

// Handler собирает цепочку middleware вокруг маршрутизатора
func (s *QRServer) Handler() http.Handler {
	handler := s.mux
	for _, f := range s.middlwares {
		handler = f(handler)
	}
	return handler
}

// RunServer блокируется до остановки сервера
func (s *QRServer) RunServer() error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		s.Log.Errorf("starting server on %s error: %s", s.address, err)
		return err
	}
	return s.Serve(ln)
}

func (s *QRServer) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	s.Log.Infof("Starting server on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.Log.Errorf("server on %s error: %s", ln.Addr(), err)
		return err
	}
	return nil
}

func (s *QRServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
