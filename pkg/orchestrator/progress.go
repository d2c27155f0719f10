package orchestrator

import "sync"

// Phase tags a ProgressEvent's originating stage.
type Phase string

const (
	PhaseSA Phase = "SA"
	PhaseGA Phase = "GA"
)

// ProgressEvent is one mid-run observable published to subscribers
// (spec.md §4.7).
type ProgressEvent struct {
	Iteration     int
	Phase         Phase
	BestFitness   float64
	Diversity     float64
	OperatorMix   map[string]float64
}

// ProgressStream publishes ProgressEvents on a single bounded channel. A
// full channel drops the oldest queued event rather than blocking the
// publishing worker (spec.md §5).
type ProgressStream struct {
	mu     sync.Mutex
	ch     chan ProgressEvent
	closed bool
}

// NewProgressStream builds a ProgressStream with the given channel depth.
func NewProgressStream(depth int) *ProgressStream {
	if depth <= 0 {
		depth = 32
	}
	return &ProgressStream{ch: make(chan ProgressEvent, depth)}
}

// Events returns the read side of the stream for subscribers.
func (p *ProgressStream) Events() <-chan ProgressEvent { return p.ch }

// Publish sends an event, dropping the oldest queued event if the channel
// is full so a slow subscriber never blocks a worker.
func (p *ProgressStream) Publish(ev ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.ch <- ev:
	default:
		select {
		case <-p.ch:
		default:
		}
		select {
		case p.ch <- ev:
		default:
		}
	}
}

// Close stops further publishing and closes the channel for subscribers.
func (p *ProgressStream) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.ch)
}
