package auth

import "sync"

// Event is an authentication lifecycle transition.
type Event int

const (
	EventSignIn Event = iota
	EventSignOut
)

// Notifier fans auth lifecycle events out to subscribers. The cache
// subscribes so a sign-in or sign-out fully resets cached state and no
// prior session's records leak into the next.
type Notifier struct {
	mu   sync.Mutex
	subs []func(Event)
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a callback for every future event. Callbacks run
// synchronously on the firing goroutine.
func (n *Notifier) Subscribe(fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// Fire delivers an event to every subscriber.
func (n *Notifier) Fire(ev Event) {
	n.mu.Lock()
	subs := make([]func(Event), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
