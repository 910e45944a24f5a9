package notify

// Hub fans events out to subscribed observers. It is not safe for concurrent
// use; the store runs on a single logical thread.
type Hub struct {
	subs    []*Subscription
	blocked int
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	hub *Hub
	obs Observer
}

// Subscribe adds o after every existing observer.
func (h *Hub) Subscribe(o Observer) *Subscription {
	s := &Subscription{hub: h, obs: o}
	h.subs = append(h.subs, s)
	return s
}

// Cancel removes the subscription. Canceling twice is harmless.
func (s *Subscription) Cancel() {
	if s == nil || s.hub == nil {
		return
	}
	h := s.hub
	s.hub = nil
	for i, x := range h.subs {
		if x == s {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers e to every observer in subscription order. Observers
// canceled during delivery do not see later events. Nothing is delivered
// while the hub is blocked.
func (h *Hub) Emit(e Event) {
	if h == nil || h.blocked > 0 {
		return
	}
	for _, s := range h.subs {
		if s.hub != nil {
			s.obs.Notify(e)
		}
	}
}

// Block suppresses delivery until the matching Unblock. Events emitted
// meanwhile are dropped.
func (h *Hub) Block() { h.blocked++ }

// Unblock undoes one Block.
func (h *Hub) Unblock() {
	if h.blocked > 0 {
		h.blocked--
	}
}

// Blocked reports whether delivery is suppressed.
func (h *Hub) Blocked() bool { return h.blocked > 0 }

// Len returns the number of live subscriptions.
func (h *Hub) Len() int { return len(h.subs) }
