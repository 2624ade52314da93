package services

import (
	"sync"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/dto"
)

// maxBufferedNotices caps the per-user notice backlog; older notices are
// dropped first since they are transient by definition.
const maxBufferedNotices = 50

// noticeBuffer collects transient user-facing messages emitted by the engine
// until the client drains them. Implements ports/services.Notifier.
type noticeBuffer struct {
	mu      sync.Mutex
	pending map[string][]dto.Notice
}

func newNoticeBuffer() *noticeBuffer {
	return &noticeBuffer{pending: make(map[string][]dto.Notice)}
}

// Notify appends a notice for the user. Never blocks.
func (b *noticeBuffer) Notify(userID, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	notices := append(b.pending[userID], dto.Notice{Message: message, At: time.Now()})
	if len(notices) > maxBufferedNotices {
		notices = notices[len(notices)-maxBufferedNotices:]
	}
	b.pending[userID] = notices
}

// Drain returns and clears the user's pending notices.
func (b *noticeBuffer) Drain(userID string) []dto.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	notices := b.pending[userID]
	delete(b.pending, userID)
	return notices
}

// Clear drops any pending notices, used at session close.
func (b *noticeBuffer) Clear(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, userID)
}
