package widget

import "context"

// Pending tracks background work started by the controller
type Pending struct {
	done chan struct{}
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) finish() {
	close(p.done)
}

// Done is closed once the work has finished and its output is rendered
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the work has finished or ctx is done
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
