// wrap.go implements the function interceptor: wrapped callables report
// panics raised during their execution before re-panicking.

package raven

import (
	"fmt"
	"reflect"
)

// WrapOptions configure a single Wrap or Context call.
type WrapOptions struct {
	// Shallow disables recursive wrapping of func-typed arguments.
	// By default every callable argument passed to a wrapped function is
	// itself wrapped at invocation time, so escaping callbacks stay
	// instrumented.
	Shallow bool

	// Event carries per-capture options applied to panics observed by
	// the wrapper.
	Event *EventOptions
}

// PanicError wraps a recovered non-error panic value so it can live in the
// client's last-error slot.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", formatRecovered(e.Value))
}

// All reflect-made funcs share one code pointer, which doubles as the
// "already wrapped" marker: wrapping a wrapper returns it unchanged, so
// repeated wrapping never compounds recover layers.
var makeFuncStub = reflect.MakeFunc(
	reflect.TypeOf(func() {}),
	func([]reflect.Value) []reflect.Value { return nil },
).Pointer()

// Wrap returns a callable with the same type and external behavior as fn,
// except that a panic raised during its execution is captured before being
// re-raised. The wrapper never swallows the panic; it only observes it.
// Non-callable input is returned unchanged, as is an already-wrapped
// callable.
func (c *Client) Wrap(opts *WrapOptions, fn any) any {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return fn
	}
	if v.Pointer() == makeFuncStub {
		return fn
	}
	return c.makeWrapper(opts, v).Interface()
}

// Context wraps fn and invokes it immediately with args. Excess or
// mistyped args panic the same way a direct call would.
func (c *Client) Context(opts *WrapOptions, fn any, args ...any) {
	wrapped := c.Wrap(opts, fn)
	v := reflect.ValueOf(wrapped)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return
	}

	t := v.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		av := reflect.ValueOf(arg)
		if !av.IsValid() {
			// Untyped nil: substitute the parameter's zero value.
			if i < t.NumIn() {
				av = reflect.Zero(t.In(i))
			} else if t.IsVariadic() {
				av = reflect.Zero(t.In(t.NumIn() - 1).Elem())
			}
		}
		in[i] = av
	}
	v.Call(in)
}

func (c *Client) makeWrapper(opts *WrapOptions, fn reflect.Value) reflect.Value {
	t := fn.Type()
	deep := opts == nil || !opts.Shallow

	return reflect.MakeFunc(t, func(args []reflect.Value) (results []reflect.Value) {
		if deep {
			for i, arg := range args {
				args[i] = c.wrapArg(opts, arg)
			}
		}

		defer func() {
			if recovered := recover(); recovered != nil {
				c.capturePanic(recovered, opts)
				panic(recovered)
			}
		}()

		if t.IsVariadic() {
			return fn.CallSlice(args)
		}
		return fn.Call(args)
	})
}

// wrapArg wraps callable arguments, both func-typed parameters and funcs
// passed through any-typed parameters.
func (c *Client) wrapArg(opts *WrapOptions, arg reflect.Value) reflect.Value {
	switch arg.Kind() {
	case reflect.Func:
		if arg.IsNil() || arg.Pointer() == makeFuncStub {
			return arg
		}
		return c.makeWrapper(opts, arg)

	case reflect.Interface:
		if arg.IsNil() || arg.Elem().Kind() != reflect.Func {
			return arg
		}
		inner := arg.Elem()
		if inner.IsNil() || inner.Pointer() == makeFuncStub {
			return arg
		}
		wrapped := c.makeWrapper(opts, inner)
		if !wrapped.Type().AssignableTo(arg.Type()) {
			return arg
		}
		boxed := reflect.New(arg.Type()).Elem()
		boxed.Set(wrapped)
		return boxed
	}
	return arg
}

// capturePanic records a panic observed inside a wrapped callable and
// flushes it on acceptance, with frames collected from the Go runtime.
func (c *Client) capturePanic(recovered any, opts *WrapOptions) {
	err, ok := recovered.(error)
	if !ok {
		err = &PanicError{Value: recovered}
	}

	c.mu.Lock()
	c.lastError = err
	c.mu.Unlock()

	var ev *EventOptions
	if opts != nil {
		ev = opts.Event
	}
	r := RawReport{
		Name:    "panic",
		Message: formatRecovered(recovered),
		Stack:   callerFrames(2),
	}
	if c.RecordReport(r, ev) {
		c.Capture(ev)
	}
}

func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
