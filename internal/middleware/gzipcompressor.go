package middleware

import (
	"mime"
	"net/http"
	"strings"

	"github.com/MrPunder/qrstyle/internal/gzipcomp"
	"github.com/MrPunder/qrstyle/internal/logger"
)

// сжимаются только текстовые ответы, изображения уже сжаты
var compressibleTypes = map[string]bool{
	"text/html":        true,
	"application/json": true,
	"text/plain":       true,
}

type GzipCompressor struct {
	log logger.Logger
}

func NewGzipCompressor(log logger.Logger) *GzipCompressor {
	return &GzipCompressor{
		log: log,
	}
}

func (c *GzipCompressor) CompressHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			c.log.Debug("Detected gzip request body")

			body, err := gzipcomp.NewGzipCompressReader(r.Body)
			if err != nil {
				c.log.Errorf("Error setting read buffer for gzip compressor: %v", err)
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}
			r.Body = body
			defer body.Close()
		}

		supportGzip := false
		for _, value := range r.Header.Values("Accept-Encoding") {
			if strings.Contains(value, "gzip") {
				supportGzip = true
				break
			}
		}

		if !supportGzip {
			next.ServeHTTP(w, r)
			return
		}

		rw := gzipcomp.NewGzipResponseWriter(w)
		next.ServeHTTP(rw, r)

		contentType, _, _ := mime.ParseMediaType(rw.Header().Get("Content-Type"))
		compress := compressibleTypes[contentType] && rw.Status() < 300
		if err := rw.Flush(compress); err != nil {
			c.log.Errorf("Error flushing response: %v", err)
		}
	})
}
