package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/and161185/zest/internal/errs"
	"go.uber.org/zap"
)

// maxBody bounds request bodies; pasted recipe text is the largest input.
const maxBody = 1 << 20

type errorBody struct {
	Error   string       `json:"error"`
	Details []errs.Issue `json:"details,omitempty"`
}

type okBody struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyExists), errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errs.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var defaultMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request.",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not found",
	http.StatusConflict:            "Conflict",
	http.StatusTooManyRequests:     "Too many requests. Try again later.",
	http.StatusBadGateway:          "AI generation failed. Try again.",
	http.StatusInternalServerError: "internal",
}

// errorResponse builds the status and body for err. Only messages meant for
// the caller are exposed; everything else gets a generic text.
func errorResponse(err error) (int, errorBody) {
	code := statusFor(err)
	body := errorBody{Error: defaultMessages[code]}

	var ve *errs.ValidationError
	var pe *errs.Error
	switch {
	case errors.As(err, &ve):
		body.Error = ve.Message
		body.Details = ve.Issues
	case errors.As(err, &pe):
		body.Error = pe.Msg
	}
	return code, body
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, body := errorResponse(err)
	if code >= http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.Int("status", code),
			zap.Error(err),
		}
		if u, ok := UserFromCtx(r.Context()); ok {
			fields = append(fields, zap.String("user", u.ID.String()))
		}
		s.log.Error("request failed", fields...)
	}
	writeJSON(w, code, body)
}

// decodeBody reads a JSON object into dst. Unknown fields are ignored.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.Validation("Request body is required.")
		}
		return errs.Validation("Invalid JSON body.")
	}
	return nil
}
