// ABOUTME: HTTP logging middleware for the nodetrace web server with key=value log.Printf lines.
// ABOUTME: Replaces chi's default logger format so request logs match the query logs.
package web

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// webRequestLogger logs one line per request once the handler returns.
// It must run after middleware.RequestID.
func webRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Printf("component=nodetrace.web action=request method=%s path=%s status=%d bytes=%d elapsed=%s request_id=%s",
				r.Method, r.URL.EscapedPath(), status, ww.BytesWritten(),
				time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}
