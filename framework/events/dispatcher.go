package events

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Listener handles one event. Returning an error aborts the dispatch.
type Listener func(ctx context.Context, e Event) (Result, error)

type registration struct {
	listener Listener
	priority int
	seq      int
}

// Dispatcher delivers events to listeners synchronously, highest priority
// first and in registration order within a priority.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]registration
	seq       int
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil logger disables logging.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		listeners: make(map[string][]registration),
		logger:    logger.Named("events"),
	}
}

// Listen adds a listener for name with priority 0.
func (d *Dispatcher) Listen(name string, l Listener) {
	d.ListenWithPriority(name, 0, l)
}

// ListenWithPriority adds a listener. Higher priorities run first.
func (d *Dispatcher) ListenWithPriority(name string, priority int, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	// copy on write: Dispatch iterates its snapshot without holding the lock
	old := d.listeners[name]
	regs := make([]registration, len(old), len(old)+1)
	copy(regs, old)
	regs = append(regs, registration{listener: l, priority: priority, seq: d.seq})
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority > regs[j].priority
		}
		return regs[i].seq < regs[j].seq
	})
	d.listeners[name] = regs
}

// On registers a listener for events of type E under name.
//
//	events.On(d, events.KernelRequest, func(ctx context.Context, e *events.RequestEvent) (events.Result, error) {
//	    if e.Request.BearerToken() == "" {
//	        return events.RespondWith(gohttp.Unauthorized()), nil
//	    }
//	    return events.Continue(), nil
//	})
func On[E Event](d *Dispatcher, name string, fn func(ctx context.Context, e E) (Result, error)) {
	d.Listen(name, func(ctx context.Context, e Event) (Result, error) {
		typed, ok := e.(E)
		if !ok {
			return Continue(), nil
		}
		return fn(ctx, typed)
	})
}

// HasListeners reports whether anything listens for name.
func (d *Dispatcher) HasListeners(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[name]) > 0
}

// Forget removes every listener for name.
func (d *Dispatcher) Forget(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.listeners, name)
}

// Dispatch runs the listeners for e until one returns something other than
// Continue, and returns that result. A listener error stops dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) (Result, error) {
	name := e.EventName()

	d.mu.RLock()
	regs := d.listeners[name]
	d.mu.RUnlock()

	for i, reg := range regs {
		res, err := reg.listener(ctx, e)
		if err != nil {
			return Continue(), fmt.Errorf("events: %s listener %d: %w", name, i, err)
		}
		if res.Kind == KindRespond && res.Response == nil {
			return Continue(), fmt.Errorf("events: %s listener %d responded without a response", name, i)
		}
		if res.Kind == KindReplace && res.Match == nil {
			return Continue(), fmt.Errorf("events: %s listener %d replaced the route with nil", name, i)
		}
		if res.Handled() {
			d.logger.Debug("event handled",
				zap.String("event", name),
				zap.Int("listener", i),
				zap.Stringer("result", res.Kind),
			)
			return res, nil
		}
	}
	return Continue(), nil
}
