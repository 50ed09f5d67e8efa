package testsupport

import (
	"sync"

	"github.com/goliatone/go-surveyform/pkg/notify"
)

// Recorder is a notify.Sink that keeps every notification.
type Recorder struct {
	mu    sync.Mutex
	items []notify.Notification
}

var _ notify.Sink = (*Recorder)(nil)

func (r *Recorder) Notify(kind notify.Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notify.Notification{Kind: kind, Message: message})
}

// Notifications returns a copy of what was recorded.
func (r *Recorder) Notifications() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.items...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (notify.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return notify.Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
