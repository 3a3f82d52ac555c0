package hub

import "sync"

// Broadcaster hands messages to the hub from its own goroutine so a slow
// subscriber never stalls the publisher. Only the newest pending message is
// kept; intermediate ones are dropped.
type Broadcaster struct {
	hub *Hub

	mu      sync.Mutex
	pending []byte

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewBroadcaster(h *Hub) *Broadcaster {
	b := &Broadcaster{
		hub:  h,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go b.run()
	return b
}

// Publish replaces the pending message and returns immediately.
func (b *Broadcaster) Publish(message []byte) {
	b.mu.Lock()
	b.pending = message
	b.mu.Unlock()
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Stop flushes the pending message and ends the goroutine.
func (b *Broadcaster) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.done
}

func (b *Broadcaster) run() {
	defer close(b.done)
	for {
		select {
		case <-b.wake:
			b.flush()
		case <-b.stop:
			b.flush()
			return
		}
	}
}

func (b *Broadcaster) flush() {
	b.mu.Lock()
	msg := b.pending
	b.pending = nil
	b.mu.Unlock()
	if msg != nil {
		b.hub.Broadcast(msg)
	}
}
