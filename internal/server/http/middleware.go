package httpserver

import (
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logged wraps a handle with structured request logging. The route pattern is
// logged instead of the path so share tokens never reach the logs.
func (s *Server) logged(route string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r, ps)

		// без тел и токенов, только метаданные
		s.log.Info("http",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", r.RemoteAddr),
		)
	}
}

// recovered is installed as the router's PanicHandler.
func (s *Server) recovered(w http.ResponseWriter, r *http.Request, v any) {
	s.log.Error("panic",
		zap.Any("reason", v),
		zap.ByteString("stack", debug.Stack()),
		zap.String("method", r.Method),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
}

// clientIP returns the host part of the peer address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
