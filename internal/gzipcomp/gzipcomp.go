package gzipcomp

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
)

// GzipCompressWiter allows to use http.ResponseWriter with gzip compression
type GzipCompressWiter struct {
	http.ResponseWriter
	zw *gzip.Writer
}

func NewGzipCompressWriter(w http.ResponseWriter) *GzipCompressWiter {
	return &GzipCompressWiter{
		ResponseWriter: w,
		zw:             gzip.NewWriter(w),
	}
}

func (gw *GzipCompressWiter) Header() http.Header {
	return gw.ResponseWriter.Header()
}

func (gw *GzipCompressWiter) Write(b []byte) (int, error) {
	return gw.zw.Write(b)
}

func (gw *GzipCompressWiter) WriteHeader(statusCode int) {
	if statusCode < 300 {
		gw.ResponseWriter.Header().Set("Content-Encoding", "gzip")
		gw.ResponseWriter.Header().Del("Content-Length")
	}
	gw.ResponseWriter.WriteHeader(statusCode)
}

func (gw *GzipCompressWiter) Close() error {
	return gw.zw.Close()
}

// GzipResponseWriter stores response before possible compression
type GzipResponseWriter struct {
	w      http.ResponseWriter
	buffer *bytes.Buffer
	status int
}

func NewGzipResponseWriter(w http.ResponseWriter) *GzipResponseWriter {
	return &GzipResponseWriter{
		w:      w,
		buffer: bytes.NewBuffer(nil),
	}
}

func (rw *GzipResponseWriter) Header() http.Header {
	return rw.w.Header()
}

func (rw *GzipResponseWriter) Write(data []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.buffer.Write(data)
}

func (rw *GzipResponseWriter) WriteHeader(statusCode int) {
	if rw.status == 0 {
		rw.status = statusCode
	}
}

// Status код ответа, записанный обработчиком
func (rw *GzipResponseWriter) Status() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

// Flush отправляет накопленный ответ, сжимая его при compress
func (rw *GzipResponseWriter) Flush(compress bool) error {
	if !compress {
		rw.w.WriteHeader(rw.Status())
		_, err := rw.buffer.WriteTo(rw.w)
		return err
	}

	cw := NewGzipCompressWriter(rw.w)
	cw.WriteHeader(rw.Status())
	if _, err := rw.buffer.WriteTo(cw); err != nil {
		return err
	}
	return cw.Close()
}

// GzipCompressReader is Readcloser with gzip decompression
type GzipCompressReader struct {
	io.ReadCloser
	zr *gzip.Reader
}

func NewGzipCompressReader(r io.ReadCloser) (*GzipCompressReader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}

	return &GzipCompressReader{
		ReadCloser: r,
		zr:         zr,
	}, nil
}

func (gr *GzipCompressReader) Read(b []byte) (int, error) {
	return gr.zr.Read(b)
}

func (gr *GzipCompressReader) Close() error {
	if err := gr.ReadCloser.Close(); err != nil {
		return err
	}
	return gr.zr.Close()
}
