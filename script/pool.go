package script

import (
	"context"
	"fmt"
	"time"

	"github.com/edgerun/edgerun/apperrors"
	"github.com/edgerun/edgerun/logging"
	"github.com/edgerun/edgerun/marshal"
)

// DefaultTimeout is the handler execution deadline applied when a Pool's
// caller supplies no context deadline of its own.
const DefaultTimeout = 30 * time.Second

// Pool serializes access to a fixed set of single-threaded Contexts behind
// a channel, the strongly recommended strategy over one mutex-guarded
// Context: independent requests get independent interpreters instead of
// queueing entirely behind one lock.
type Pool struct {
	slots chan *Context
}

// NewPool evaluates scriptSource size times, one Context per slot.
func NewPool(scriptSource string, size int, logger *logging.Logger) (*Pool, error) {
	if size < 1 {
		size = 1
	}

	slots := make(chan *Context, size)
	for i := 0; i < size; i++ {
		ctx, err := New(scriptSource, logger)
		if err != nil {
			return nil, err
		}
		slots <- ctx
	}

	return &Pool{slots: slots}, nil
}

// Invoke borrows a Context, enforces deadline (defaulting to
// DefaultTimeout) by interrupting the runtime if it runs long, and returns
// the Context to the pool afterward.
func (p *Pool) Invoke(ctx context.Context, handlerName string, req *marshal.Request) (*marshal.Response, error) {
	select {
	case c := <-p.slots:
		defer func() { p.slots <- c }()
		return p.invokeWithDeadline(ctx, c, handlerName, req)
	case <-ctx.Done():
		return nil, apperrors.Wrap(ctx.Err(), apperrors.KindScriptRuntime, "timed out waiting for a free script context", 0)
	}
}

func (p *Pool) invokeWithDeadline(ctx context.Context, c *Context, handlerName string, req *marshal.Request) (*marshal.Response, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	done := make(chan struct{})
	var resp *marshal.Response
	var err error

	go func() {
		defer close(done)
		resp, err = c.Invoke(handlerName, req)
	}()

	select {
	case <-done:
		return resp, err
	case <-timer.C:
		c.Interrupt("handler execution timed out")
		<-done
		return nil, apperrors.ScriptRuntime(fmt.Sprintf("handler %q timed out", handlerName))
	}
}

// Close interrupts and discards every pooled Context.
func (p *Pool) Close() {
	close(p.slots)
	for c := range p.slots {
		c.Interrupt("context shutting down")
	}
}
