package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastInfo    ToastKind = "info"
	ToastError   ToastKind = "error"
)

type Toast struct {
	ID      uuid.UUID
	Kind    ToastKind
	Message string
	At      time.Time
}

// Toaster prints toasts to the terminal and keeps the most recent ones.
// It implements services.Notifier.
type Toaster struct {
	mu      sync.Mutex
	out     io.Writer
	limit   int
	history []Toast
}

func NewToaster(out io.Writer, limit int) *Toaster {
	return &Toaster{out: out, limit: limit}
}

func (t *Toaster) Success(msg string) { t.show(ToastSuccess, msg) }
func (t *Toaster) Info(msg string)    { t.show(ToastInfo, msg) }
func (t *Toaster) Error(msg string)   { t.show(ToastError, msg) }

func (t *Toaster) show(kind ToastKind, msg string) {
	toast := Toast{ID: uuid.New(), Kind: kind, Message: msg, At: time.Now()}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = append(t.history, toast)
	if t.limit > 0 && len(t.history) > t.limit {
		t.history = t.history[len(t.history)-t.limit:]
	}
	fmt.Fprintln(t.out, renderToast(toast))
}

// Recent returns the retained toasts, oldest first.
func (t *Toaster) Recent() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Toast(nil), t.history...)
}

func renderToast(t Toast) string {
	switch t.Kind {
	case ToastSuccess:
		return successStyle.Render("✓ " + t.Message)
	case ToastError:
		return errorStyle.Render("✗ " + t.Message)
	default:
		return infoStyle.Render("• " + t.Message)
	}
}
