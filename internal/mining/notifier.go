package mining

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
)

type NotificationKind string

const (
	NotificationPending NotificationKind = "pending"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the transient status signal consumed by the presentation
// layer. At most one is live at a time.
type Notification struct {
	Visible bool             `json:"visible"`
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
}

// Notifier drives the Hidden -> Pending -> (Success | Error) -> Hidden
// state machine. Pending has no timer and is cleared by the next
// transition. Success and Error schedule their own auto-hide; a new
// notification preempts the current one and cancels its pending hide, the
// generation counter keeps a stale timer from clobbering newer state.
type Notifier struct {
	mu         sync.Mutex
	current    Notification
	generation uint64
	hideTimer  *time.Timer

	successHideAfter time.Duration
	errorHideAfter   time.Duration

	history    *deque.Deque[Notification]
	historyCap int
}

func NewNotifier(successHideAfter, errorHideAfter time.Duration, historyCap int) *Notifier {
	return &Notifier{
		successHideAfter: successHideAfter,
		errorHideAfter:   errorHideAfter,
		history:          deque.New[Notification](historyCap, historyCap),
		historyCap:       historyCap,
	}
}

func (n *Notifier) Pending(message string) {
	n.transition(NotificationPending, message, 0)
}

func (n *Notifier) Success(message string) {
	n.transition(NotificationSuccess, message, n.successHideAfter)
}

func (n *Notifier) Error(message string) {
	n.transition(NotificationError, message, n.errorHideAfter)
}

// Current returns the live notification, zero-valued when hidden.
func (n *Notifier) Current() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// History returns past notifications, oldest first, capped at the
// configured size.
func (n *Notifier) History() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, n.history.Len())
	for i := 0; i < n.history.Len(); i++ {
		out[i] = n.history.At(i)
	}
	return out
}

func (n *Notifier) transition(kind NotificationKind, message string, hideAfter time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.hideTimer != nil {
		n.hideTimer.Stop()
		n.hideTimer = nil
	}

	n.generation++
	generation := n.generation

	n.current = Notification{Visible: true, Kind: kind, Message: message, At: time.Now()}

	if n.history.Len() == n.historyCap {
		n.history.PopFront()
	}
	n.history.PushBack(n.current)

	if hideAfter > 0 {
		n.hideTimer = time.AfterFunc(hideAfter, func() {
			n.hide(generation)
		})
	}
}

func (n *Notifier) hide(generation uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// a newer notification preempted this timer
	if generation != n.generation {
		return
	}

	n.current = Notification{}
	n.hideTimer = nil
}
