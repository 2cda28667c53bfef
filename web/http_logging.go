// ABOUTME: HTTP logging middleware for the viewer server with consistent log.Printf style.
// ABOUTME: Replaces chi's default logger format to align request logs with CLI output.
package web

import (
	"log"
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		// The query carries the whole render request (root, policy,
		// generations, orientation), so it is the interesting part of
		// the line when debugging a bad tree.
		log.Printf("web request method=%s path=%s query=%q status=%d bytes=%d duration=%s remote=%s",
			r.Method,
			r.URL.Path,
			r.URL.RawQuery,
			status,
			rec.bytes,
			time.Since(start).Round(time.Microsecond),
			r.RemoteAddr,
		)
	})
}
