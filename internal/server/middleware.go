package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redlens/redlens/internal/tracing"
)

// timingWriter injects latency headers at WriteHeader time. Headers cannot
// be added after the first write, so the elapsed value covers handler work
// up to the status line, which is where all the interesting time goes.
type timingWriter struct {
	http.ResponseWriter
	start       time.Time
	status      int
	wroteHeader bool
}

func (tw *timingWriter) WriteHeader(status int) {
	if !tw.wroteHeader {
		tw.wroteHeader = true
		tw.status = status
		elapsed := time.Since(tw.start)
		tw.Header().Set("X-Response-Time-Us", fmt.Sprintf("%d", elapsed.Microseconds()))
		tw.Header().Set("Server-Timing", fmt.Sprintf("total;dur=%.3f", elapsed.Seconds()*1000.0))
	}
	tw.ResponseWriter.WriteHeader(status)
}

func (tw *timingWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// Flush keeps streaming endpoints working through the wrapper.
func (tw *timingWriter) Flush() {
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets the WebSocket upgrade take over the connection.
func (tw *timingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := tw.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// timing adds X-Response-Time-Us and Server-Timing response headers, opens a
// span per request, and prints a one-line access log for API traffic.
func (s *Server) timing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.StartRequestSpan(r.Context(), r.Method, r.URL.Path)

		tw := &timingWriter{ResponseWriter: w, start: time.Now(), status: http.StatusOK}
		next.ServeHTTP(tw, r.WithContext(ctx))

		tracing.EndSpan(span, tw.status, nil)

		// Skip noisy static and streaming requests.
		path := r.URL.Path
		if strings.HasPrefix(path, "/api/") && !strings.Contains(path, "/stream") && !strings.Contains(path, "/ws") {
			fmt.Printf("  %s%d\x1b[0m  %-5s %-35s %7dus\n",
				statusColor(tw.status), tw.status, r.Method, path,
				time.Since(tw.start).Microseconds())
		}
	})
}

func statusColor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "\x1b[32m"
	case status >= 400 && status < 500:
		return "\x1b[33m"
	default:
		return "\x1b[31m"
	}
}
