// Package js exposes the scroll engine to JavaScript.
// It uses the goja JavaScript engine (pure Go ES5.1+ implementation).
package js

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Runtime wraps a goja JavaScript runtime with the browser globals scripts
// expect: console, timers, microtasks and performance.
type Runtime struct {
	vm        *goja.Runtime
	console   io.Writer
	log       *zap.Logger
	timers    *timerManager
	eventLoop *eventLoop
	start     time.Time

	mu      sync.Mutex
	errMu   sync.Mutex
	errors  []error
	onError func(error)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger script errors are reported to.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runtime) {
		if log != nil {
			r.log = log
		}
	}
}

// WithConsole redirects console output. The default is stdout.
func WithConsole(w io.Writer) Option {
	return func(r *Runtime) {
		if w != nil {
			r.console = w
		}
	}
}

// NewRuntime creates a new JavaScript runtime.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		vm:        goja.New(),
		console:   os.Stdout,
		log:       zap.NewNop(),
		timers:    newTimerManager(),
		eventLoop: newEventLoop(),
		start:     time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.setupConsole()
	r.setupTimers()
	r.setupWindow()

	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// SetOnError sets a callback for JavaScript errors.
func (r *Runtime) SetOnError(handler func(error)) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.onError = handler
}

// Execute runs JavaScript code and returns the result.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Recover from panics in the goja parser/runtime
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.recordError(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.recordError(err)
	}
	return result, err
}

// ExecuteScript runs the source of one script. src names it in stack traces.
// Scripts are compiled in non-strict (sloppy) mode; scripts that need strict
// mode should include a "use strict" directive.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.recordError(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.recordError(err)
		return err
	}

	_, err = r.vm.RunProgram(program)
	if err != nil {
		r.recordError(err)
	}
	return err
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.errors = r.errors[:0]
}

// RunEventLoop processes pending timers and callbacks.
// Returns true if there are more events to process.
func (r *Runtime) RunEventLoop() bool {
	return r.eventLoop.runOnce(r)
}

// ProcessTimers checks and executes any due timers.
func (r *Runtime) ProcessTimers() {
	r.timers.process(r)
}

// HasPendingWork returns true if there are timers or callbacks waiting.
func (r *Runtime) HasPendingWork() bool {
	return r.timers.hasPending() || r.eventLoop.hasPending()
}

// Now returns milliseconds since the runtime was created, the value of
// performance.now().
func (r *Runtime) Now() float64 {
	return float64(time.Since(r.start).Nanoseconds()) / 1e6
}

// call invokes a script callback from Go. A thrown exception is recorded
// rather than returned, as the browser reports errors from event handlers.
func (r *Runtime) call(fn goja.Callable, this goja.Value, args ...goja.Value) goja.Value {
	v, err := fn(this, args...)
	if err != nil {
		r.recordError(err)
		return goja.Undefined()
	}
	return v
}

func (r *Runtime) recordError(err error) {
	r.errMu.Lock()
	r.errors = append(r.errors, err)
	onError := r.onError
	r.errMu.Unlock()

	r.log.Warn("Script error", zap.Error(err))
	if onError != nil {
		onError(err)
	}
}

// setupConsole creates the console object with log, warn, error, etc.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()

	printer := func(prefix string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := formatArgs(call.Arguments)
			if prefix != "" {
				args = prefix + " " + args
			}
			fmt.Fprintln(r.console, args)
			return goja.Undefined()
		}
	}
	console.Set("log", printer(""))
	console.Set("warn", printer("[WARN]"))
	console.Set("error", printer("[ERROR]"))
	console.Set("info", printer("[INFO]"))
	console.Set("debug", printer("[DEBUG]"))

	console.Set("assert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || !call.Arguments[0].ToBoolean() {
			args := "Assertion failed"
			if len(call.Arguments) > 1 {
				args = formatArgs(call.Arguments[1:])
			}
			fmt.Fprintln(r.console, "[ASSERT]", args)
		}
		return goja.Undefined()
	})

	counts := make(map[string]int)
	console.Set("count", func(call goja.FunctionCall) goja.Value {
		label := "default"
		if len(call.Arguments) > 0 {
			label = call.Arguments[0].String()
		}
		counts[label]++
		fmt.Fprintf(r.console, "%s: %d\n", label, counts[label])
		return goja.Undefined()
	})

	r.vm.Set("console", console)
}

// setupTimers creates setTimeout, setInterval, clearTimeout, clearInterval.
func (r *Runtime) setupTimers() {
	schedule := func(repeat bool) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 1 {
				return goja.Undefined()
			}
			callback, ok := goja.AssertFunction(call.Arguments[0])
			if !ok {
				return goja.Undefined()
			}

			delay := int64(0)
			if len(call.Arguments) > 1 {
				delay = call.Arguments[1].ToInteger()
			}
			if delay < 0 {
				delay = 0
			}
			// Get additional arguments to pass to callback
			var args []goja.Value
			if len(call.Arguments) > 2 {
				args = call.Arguments[2:]
			}

			if repeat {
				// Minimum interval of 4ms, as browsers clamp nested timers
				if delay < 4 {
					delay = 4
				}
				return r.vm.ToValue(r.timers.setInterval(callback, time.Duration(delay)*time.Millisecond, args))
			}
			return r.vm.ToValue(r.timers.setTimeout(callback, time.Duration(delay)*time.Millisecond, args))
		}
	}
	clearTimer := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		r.timers.clearTimer(int(call.Arguments[0].ToInteger()))
		return goja.Undefined()
	}

	r.vm.Set("setTimeout", schedule(false))
	r.vm.Set("setInterval", schedule(true))
	r.vm.Set("clearTimeout", clearTimer)
	r.vm.Set("clearInterval", clearTimer)

	r.vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		callback, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		r.eventLoop.queueMicrotask(callback, nil)
		return goja.Undefined()
	})
}

// setupWindow makes the global object the window and adds the properties
// that do not depend on a document.
func (r *Runtime) setupWindow() {
	// Properties set on window are available globally
	window := r.vm.GlobalObject()
	r.vm.Set("window", window)
	r.vm.Set("self", window)
	r.vm.Set("globalThis", window)

	window.Set("devicePixelRatio", 1.0)

	performance := r.vm.NewObject()
	performance.Set("now", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(r.Now())
	})
	performance.Set("timeOrigin", float64(r.start.UnixNano())/1e6)
	r.vm.Set("performance", performance)
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}
	return strings.Join(parts, " ")
}

// formatValue formats a single value for output.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
