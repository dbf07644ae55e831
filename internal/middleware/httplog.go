package middleware

import (
	"net/http"
	"time"

	"github.com/MrPunder/qrstyle/internal/logger"
)

type responseData struct {
	status int
	size   int
}

type HTTPLogger struct {
	log logger.HTTPLogger
}

func NewHTTPLoger(log logger.HTTPLogger) *HTTPLogger {
	return &HTTPLogger{log}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	responseData *responseData
}

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += size
	if r.responseData.status == 0 {
		r.responseData.status = http.StatusOK
	}
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.responseData.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (l *HTTPLogger) HTTPLogHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.log.RequestLog(r.Method, r.RequestURI)
		l.log.Debugf("Headers:  %v", r.Header)

		start := time.Now()
		resD := &responseData{}
		lw := &loggingResponseWriter{
			ResponseWriter: w,
			responseData:   resD,
		}

		next.ServeHTTP(lw, r)

		l.log.ResponseLog(resD.status, resD.size, time.Since(start))
	})
}
