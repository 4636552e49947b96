package session

import (
	"sync"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
)

// UpdateKind says which field of an Update is set.
type UpdateKind int

// Update kinds.
const (
	UpdateProgress UpdateKind = iota
	UpdateJob
	UpdateLog
	UpdateState
)

// Update is one item of a session's event stream.
type Update struct {
	Kind  UpdateKind
	Event models.ProgressEvent
	Job   models.Job
	Log   models.LogEntry
	State consts.SessionState
}

// broker fans updates out to subscribers.
//
// A subscriber whose buffer is full loses its oldest pending update, so the
// session never blocks on a slow reader.
type broker struct {
	mu     sync.Mutex
	subs   map[int]chan Update
	next   int
	closed bool
}

func newBroker() *broker {
	return &broker{subs: make(map[int]chan Update)}
}

// subscribe registers a reader with the given buffer size.
func (b *broker) subscribe(buffer int) (<-chan Update, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Update, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

// publish delivers u to every subscriber, dropping the oldest update on a full buffer.
func (b *broker) publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

// close ends every subscription.
func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
