package observability

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldTurnID is the field name for the interaction turn ID.
	LogFieldTurnID = "turn_id"
	// LogFieldIntent is the field name for the classified intent kind.
	LogFieldIntent = "intent"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
	// LogFieldUtteranceLen is the field name for utterance length.
	LogFieldUtteranceLen = "utterance_length"
)

// NewLogger builds the process-wide logger. Dev mode gets a human-readable
// text handler, prod a JSON handler.
func NewLogger(dev bool) *slog.Logger {
	var handler slog.Handler
	if dev {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler)
}

// TurnContext carries structured logging state for a single interaction turn.
type TurnContext struct {
	TurnID    string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewTurnContext creates a turn context with a generated turn ID.
func NewTurnContext(logger *slog.Logger) *TurnContext {
	return &TurnContext{
		TurnID:    uuid.New().String(),
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message with the turn's base attributes.
func (t *TurnContext) Info(msg string, attrs ...slog.Attr) {
	t.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, t.combined(attrs...)...)
}

// Debug logs a debug message with the turn's base attributes.
func (t *TurnContext) Debug(msg string, attrs ...slog.Attr) {
	t.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, t.combined(attrs...)...)
}

// Warn logs a warning message with the turn's base attributes.
func (t *TurnContext) Warn(msg string, attrs ...slog.Attr) {
	t.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, t.combined(attrs...)...)
}

// Error logs an error message with the error attached.
func (t *TurnContext) Error(msg string, err error, attrs ...slog.Attr) {
	all := append(attrs, slog.String("error", err.Error()))
	t.Logger.LogAttrs(context.Background(), slog.LevelError, msg, t.combined(all...)...)
}

// DurationMs returns the elapsed time since the turn started in milliseconds.
func (t *TurnContext) DurationMs() int64 {
	return time.Since(t.StartTime).Milliseconds()
}

func (t *TurnContext) combined(attrs ...slog.Attr) []slog.Attr {
	base := []slog.Attr{slog.String(LogFieldTurnID, t.TurnID)}
	return append(base, attrs...)
}

type ctxKey struct{}

// WithTurnContext adds the turn context to the context.
func WithTurnContext(ctx context.Context, tc *TurnContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext extracts the turn context from the context.
func FromContext(ctx context.Context) (*TurnContext, bool) {
	tc, ok := ctx.Value(ctxKey{}).(*TurnContext)
	return tc, ok
}
