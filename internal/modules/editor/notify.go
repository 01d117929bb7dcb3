package editor

import (
	"sync"

	"go.uber.org/zap"
)

// ToastBuffer keeps the last toast of a session for the next view fetch.
type ToastBuffer struct {
	mu     sync.Mutex
	last   *Toast
	logger *zap.Logger
}

func NewToastBuffer(logger *zap.Logger) *ToastBuffer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToastBuffer{logger: logger}
}

func (b *ToastBuffer) Notify(t Toast) {
	b.mu.Lock()
	b.last = &t
	b.mu.Unlock()
	b.logger.Debug("toast", zap.String("message", t.Message), zap.Bool("error", t.Error))
}

// Take returns and clears the pending toast.
func (b *ToastBuffer) Take() *Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.last
	b.last = nil
	return t
}
