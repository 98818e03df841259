package app

import (
	"sync"

	"mcq-quiz-service/internal/domain"
)

// ResultFeed fans appended results out to subscribers (admin dashboards).
// Publishing never blocks on a slow subscriber.
type ResultFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.Result]struct{}
}

func NewResultFeed() *ResultFeed {
	return &ResultFeed{subscribers: make(map[chan domain.Result]struct{})}
}

// Subscribe returns a channel receiving every subsequently appended result.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ResultFeed) Subscribe() (<-chan domain.Result, func()) {
	ch := make(chan domain.Result, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the result to every subscriber, dropping the oldest
// buffered entry when a subscriber's channel is full.
func (f *ResultFeed) Publish(result domain.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- result:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}
