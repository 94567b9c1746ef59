package layerrenamer

import (
	"fmt"
	"io"
	"sync"
	"time"
)

type NotificationButton struct {
	Text   string
	Action func()
}

type Notification struct {
	Message string
	Timeout time.Duration
	Button  *NotificationButton
}

// NotificationHandle lets the caller dismiss a notification and trigger its
// button.
type NotificationHandle interface {
	Cancel()
	Press() bool
}

type Notifier interface {
	Notify(n Notification) NotificationHandle
}

// WriterNotifier prints notifications as lines on an io.Writer. Posting a new
// notification cancels the previous one, so only the latest button can be
// pressed.
type WriterNotifier struct {
	mu   sync.Mutex
	w    io.Writer
	last *writerHandle
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(notification Notification) NotificationHandle {
	n.mu.Lock()
	if n.last != nil {
		n.last.Cancel()
	}
	handle := &writerHandle{notification: notification}
	n.last = handle
	n.mu.Unlock()

	line := notification.Message
	if notification.Button != nil {
		line = fmt.Sprintf("%s [%s]", line, notification.Button.Text)
	}
	_, _ = fmt.Fprintln(n.w, line)
	return handle
}

// Last returns the most recent notification handle, or nil.
func (n *WriterNotifier) Last() NotificationHandle {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last == nil {
		return nil
	}
	return n.last
}

type writerHandle struct {
	mu           sync.Mutex
	notification Notification
	cancelled    bool
}

func (h *writerHandle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
}

// Press runs the button action unless the notification was cancelled or has
// no button.
func (h *writerHandle) Press() bool {
	h.mu.Lock()
	if h.cancelled || h.notification.Button == nil || h.notification.Button.Action == nil {
		h.mu.Unlock()
		return false
	}
	h.cancelled = true
	action := h.notification.Button.Action
	h.mu.Unlock()

	action()
	return true
}

func renamedMessage(total int) string {
	if total == 1 {
		return "1 layer was renamed"
	}
	return fmt.Sprintf("%d layers were renamed", total)
}

func restoredMessage(total int) string {
	if total == 1 {
		return "Renamed 1 layer back to their original names"
	}
	return fmt.Sprintf("Renamed %d layers back to their original names", total)
}

func selectedMessage(count int, componentType string) string {
	switch count {
	case 0:
		return fmt.Sprintf("No instances of %q found", componentType)
	case 1:
		return fmt.Sprintf("Selected 1 instance of %q", componentType)
	default:
		return fmt.Sprintf("Selected %d instances of %q", count, componentType)
	}
}
