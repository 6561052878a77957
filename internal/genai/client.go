// Package genai wraps an external text-completion backend with a strict JSON
// contract: responses are cleaned, decoded, schema-validated and retried once.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/and161185/zest/internal/errs"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Completer sends a prompt to a generative backend and returns its raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// rawLimit bounds the raw response kept for diagnostics.
const rawLimit = 240

// DefaultRetrySuffix is appended to the prompt when no retry prompt is given.
const DefaultRetrySuffix = "\nReturn strict JSON only."

// GenerationError reports that no attempt produced valid data.
// It matches errs.ErrUpstream.
type GenerationError struct {
	Raw string // last raw response, truncated
	Err error  // last failure
}

func (e *GenerationError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation failed: %v; raw response: %s", e.Err, e.Raw)
}

// Unwrap exposes both the sentinel and the cause.
func (e *GenerationError) Unwrap() []error { return []error{errs.ErrUpstream, e.Err} }

// Client performs strict-JSON generations against a Completer.
type Client struct {
	completer Completer
	validate  *validator.Validate
	log       *zap.Logger
}

// NewClient constructs a Client. A nil logger is replaced with a no-op one.
func NewClient(c Completer, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{completer: c, validate: validator.New(validator.WithRequiredStructEnabled()), log: log}
}

// GenerateStrictJSON asks the backend for a JSON document decoding into T and
// satisfying T's validate tags. On any parse or validation failure it retries
// exactly once with retryPrompt (or prompt plus DefaultRetrySuffix when empty).
func GenerateStrictJSON[T any](ctx context.Context, c *Client, prompt, retryPrompt string) (T, error) {
	var zero T
	if retryPrompt == "" {
		retryPrompt = prompt + DefaultRetrySuffix
	}

	var (
		lastRaw string
		lastErr error
	)
	for attempt, p := range [2]string{prompt, retryPrompt} {
		raw, err := c.completer.Complete(ctx, p)
		if err != nil {
			lastErr = err
			c.log.Warn("generation attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		lastRaw = raw

		var out T
		if err := json.Unmarshal([]byte(StripFences(raw)), &out); err != nil {
			lastErr = fmt.Errorf("decode: %w", err)
			c.log.Warn("generation returned invalid JSON", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		if err := c.validate.Struct(&out); err != nil {
			lastErr = fmt.Errorf("schema: %w", err)
			c.log.Warn("generation failed schema", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		return out, nil
	}
	return zero, &GenerationError{Raw: truncate(lastRaw, rawLimit), Err: lastErr}
}

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// StripFences removes an optional markdown code fence around a response.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// keep whole runes
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
