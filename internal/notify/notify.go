package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Variant is the severity of a toast.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantInfo    Variant = "info"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
)

// Toast is a short user-facing notification.
type Toast struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Variant Variant `json:"variant"`
}

// Notifier delivers toasts. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, toast Toast)
}

// LogNotifier writes toasts to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier backed by logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, toast Toast) {
	if n == nil || n.logger == nil {
		return
	}
	level := slog.LevelInfo
	switch toast.Variant {
	case VariantError:
		level = slog.LevelError
	case VariantWarning:
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "toast", "title", toast.Title, "message", toast.Message, "variant", toast.Variant)
}

// Recorder collects toasts raised while serving a request.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
	next   Notifier
}

// NewRecorder creates a recorder that also forwards to next, if non-nil.
func NewRecorder(next Notifier) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Notify(ctx context.Context, toast Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, toast)
	r.mu.Unlock()
	if r.next != nil {
		r.next.Notify(ctx, toast)
	}
}

// Toasts returns a copy of the recorded toasts.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

type recorderKey struct{}

// WithRecorder attaches a recorder to ctx so that ContextNotifier can route
// toasts to it.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// RecorderFromContext returns the recorder attached to ctx, if any.
func RecorderFromContext(ctx context.Context) (*Recorder, bool) {
	r, ok := ctx.Value(recorderKey{}).(*Recorder)
	return r, ok && r != nil
}

// ContextNotifier routes toasts to the request's recorder when present and
// always to the fallback notifier.
type ContextNotifier struct {
	fallback Notifier
}

// NewContextNotifier creates a context-routing notifier.
func NewContextNotifier(fallback Notifier) *ContextNotifier {
	return &ContextNotifier{fallback: fallback}
}

func (n *ContextNotifier) Notify(ctx context.Context, toast Toast) {
	if r, ok := RecorderFromContext(ctx); ok {
		r.mu.Lock()
		r.toasts = append(r.toasts, toast)
		r.mu.Unlock()
	}
	if n.fallback != nil {
		n.fallback.Notify(ctx, toast)
	}
}
