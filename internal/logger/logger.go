package logger

import "time"

type Logger interface {
	Info(mes string)
	Infof(str string, arg ...any)
	Error(mess string)
	Errorf(str string, arg ...any)
	Debug(mess string)
	Debugf(str string, arg ...any)
}

// HTTPLogger логгер с методами журналирования запросов
type HTTPLogger interface {
	Logger
	RequestLog(method string, path string)
	ResponseLog(status int, size int, duration time.Duration)
}
