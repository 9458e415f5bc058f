// Package script owns the sandboxed JS execution boundary: evaluating a
// tenant's script source into a handlers object and invoking named
// handlers against marshalled requests. A Context is single-threaded and
// not safe for concurrent use — callers reach it through Pool.
package script

import (
	"fmt"

	"github.com/dop251/goja"
	"github.com/edgerun/edgerun/apperrors"
	"github.com/edgerun/edgerun/logging"
	"github.com/edgerun/edgerun/marshal"
)

// Context wraps one goja runtime that has evaluated a tenant's script
// module and installed the host print callable.
type Context struct {
	rt     *goja.Runtime
	logger *logging.Logger
}

// New evaluates scriptSource as an expression whose value is an object
// mapping handler names to callables, assigns it to the well-known
// "handlers" global, and installs a host print(string) callable that
// writes through logger at info level.
func New(scriptSource string, logger *logging.Logger) (*Context, error) {
	if logger == nil {
		logger = logging.Default()
	}

	rt := goja.New()

	value, err := rt.RunString(scriptSource)
	if err != nil {
		return nil, apperrors.ScriptLoad(err)
	}

	if goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, apperrors.ScriptLoad(fmt.Errorf("script module did not evaluate to an object"))
	}
	handlers := value.ToObject(rt)
	if err := rt.Set("handlers", handlers); err != nil {
		return nil, apperrors.ScriptLoad(err)
	}

	ctx := &Context{rt: rt, logger: logger}

	if err := rt.Set("print", func(msg string) {
		ctx.logger.Info(msg, "source", "script")
	}); err != nil {
		return nil, apperrors.ScriptLoad(err)
	}

	return ctx, nil
}

// Invoke fetches handlers[name], calls it with the marshalled request, and
// drives any returned promise to completion before marshalling the result
// back into a Response. Runs entirely synchronously from the caller's
// perspective even though the guest may await internally.
func (c *Context) Invoke(name string, req *marshal.Request) (*marshal.Response, error) {
	handlersVal := c.rt.Get("handlers")
	if handlersVal == nil {
		return nil, apperrors.ScriptRuntime("handlers object is not installed")
	}

	handlers := handlersVal.ToObject(c.rt)
	if handlers == nil {
		return nil, apperrors.ScriptRuntime("handlers is not an object")
	}

	fnVal := handlers.Get(name)
	if fnVal == nil || goja.IsUndefined(fnVal) {
		return nil, apperrors.ScriptRuntime(fmt.Sprintf("no such handler %q", name))
	}

	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, apperrors.ScriptRuntime(fmt.Sprintf("handler %q is not callable", name))
	}

	guestReq := marshal.ToGuest(c.rt, req)

	result, err := fn(goja.Undefined(), guestReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindScriptRuntime, fmt.Sprintf("handler %q threw", name), 0)
	}

	result, err = c.resolve(result)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindScriptRuntime, fmt.Sprintf("handler %q rejected", name), 0)
	}

	return marshal.FromGuest(c.rt, result)
}

// Interrupt aborts any script execution currently in progress on this
// Context's runtime, surfacing reason as the resulting error.
func (c *Context) Interrupt(reason string) {
	c.rt.Interrupt(reason)
}

// resolve unwraps value if it is a Promise. Handlers in this runtime have no
// real async I/O source (no timers, no network) to await, so by the time
// fn(...) returns control to the host, goja has already drained its
// microtask queue and the promise has settled — there is nothing left to
// pump here, only the terminal state to read.
func (c *Context) resolve(value goja.Value) (goja.Value, error) {
	promise, ok := value.Export().(*goja.Promise)
	if !ok {
		return value, nil
	}

	switch promise.State() {
	case goja.PromiseStateRejected:
		return nil, fmt.Errorf("%s", promise.Result().String())
	default:
		return promise.Result(), nil
	}
}
