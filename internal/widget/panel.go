package widget

import (
	"context"
	"sync"
)

type panelState int

const (
	stateEmpty panelState = iota
	stateLoading
	stateReady
	stateFailed
)

// panel runs at most one live request per key. Changing the key cancels
// the superseded request; completions tagged with an older generation are
// discarded, so the newest key always wins.
type panel[K comparable, V any] struct {
	mu     sync.Mutex
	fetch  func(ctx context.Context, key K) (V, error)
	gen    uint64
	cancel context.CancelFunc
	key    K
	state  panelState
	result V
	err    error
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// update starts a request for key unless key is already current. An empty
// key clears the panel. The returned channel closes once the panel settles
// for this call; for a stale request it closes without changing state.
func (p *panel[K, V]) update(ctx context.Context, key K, empty bool) <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if empty {
		p.reset()
		return closedChan()
	}
	if p.state != stateEmpty && p.key == key {
		return closedChan()
	}

	if p.cancel != nil {
		p.cancel()
	}
	p.gen++
	gen := p.gen
	reqCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.key = key
	p.state = stateLoading

	var zero V
	p.result = zero
	p.err = nil

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		v, err := p.fetch(reqCtx, key)

		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.gen {
			return
		}
		p.cancel = nil
		if err != nil {
			p.state = stateFailed
			p.err = err
			return
		}
		p.state = stateReady
		p.result = v
	}()
	return done
}

func (p *panel[K, V]) reset() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++

	var zeroK K
	var zeroV V
	p.key = zeroK
	p.result = zeroV
	p.err = nil
	p.state = stateEmpty
}

func (p *panel[K, V]) snapshot() (K, panelState, V, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key, p.state, p.result, p.err
}

func (p *panel[K, V]) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}
