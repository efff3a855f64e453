package js

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/scrollwatch/dom"
	"github.com/chrisuehlinger/scrollwatch/frame"
	"github.com/chrisuehlinger/scrollwatch/html"
	"github.com/chrisuehlinger/scrollwatch/scroll"
)

// ScriptLoader loads external scripts by reference.
type ScriptLoader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// ScriptExecutor runs the scripts of a page against a window and the scroll
// registry watching it.
type ScriptExecutor struct {
	runtime     *Runtime
	domBinder   *DOMBinder
	watchBinder *ScrollWatchBinder
	window      *dom.Window
	registry    *scroll.Registry
	loader      ScriptLoader
}

// NewScriptExecutor binds w and reg into runtime. External scripts are read
// through loader.
func NewScriptExecutor(runtime *Runtime, w *dom.Window, reg *scroll.Registry, loader ScriptLoader) *ScriptExecutor {
	domBinder := NewDOMBinder(runtime)
	domBinder.BindWindow(w)
	watchBinder := NewScrollWatchBinder(runtime, domBinder, reg)
	watchBinder.Bind()

	return &ScriptExecutor{
		runtime:     runtime,
		domBinder:   domBinder,
		watchBinder: watchBinder,
		window:      w,
		registry:    reg,
		loader:      loader,
	}
}

// Runtime returns the underlying runtime.
func (se *ScriptExecutor) Runtime() *Runtime {
	return se.runtime
}

// ExecuteScripts runs the scripts of page in document order. A failing
// script is logged and does not stop the ones after it.
func (se *ScriptExecutor) ExecuteScripts(ctx context.Context, page *html.Page) {
	for i, script := range page.Scripts {
		code, name := script.Text, script.Src
		if script.Src != "" {
			data, err := se.loader.Load(ctx, script.Src)
			if err != nil {
				se.runtime.recordError(err)
				continue
			}
			code = string(data)
		} else {
			name = inlineScriptName(i)
		}
		_ = se.runtime.ExecuteScript(code, name)
	}
}

// Settle runs the event loop and animation frames until nothing is left or
// maxRounds is reached. Timers that are not due yet are waited for. It
// returns the number of rounds run.
func (se *ScriptExecutor) Settle(maxRounds int) int {
	queue, _ := se.window.Frames().(*frame.Queue)
	rounds := 0
	for rounds < maxRounds {
		rounds++
		more := se.runtime.RunEventLoop()
		if queue != nil && queue.Flush() > 0 {
			more = true
		}
		if queue != nil && queue.Pending() > 0 {
			more = true
		}
		if !more {
			break
		}
		if !se.runtime.eventLoop.hasPending() && (queue == nil || queue.Pending() == 0) {
			if wait := se.runtime.timers.nextDueTime(); wait > 0 {
				time.Sleep(wait)
			}
		}
	}
	se.runtime.log.Debug("Scripts settled", zap.Int("rounds", rounds))
	return rounds
}

// Drain runs queued tasks and due timers without flushing animation frames
// or waiting, for callers that own the frame clock. It returns the number of
// event loop turns taken.
func (se *ScriptExecutor) Drain(maxTurns int) int {
	turns := 0
	for turns < maxTurns {
		se.runtime.RunEventLoop()
		turns++
		if !se.runtime.eventLoop.hasPending() {
			break
		}
	}
	return turns
}

// Reset drops queued tasks. Timers keep running.
func (se *ScriptExecutor) Reset() {
	se.runtime.eventLoop.clear()
}

func inlineScriptName(i int) string {
	return fmt.Sprintf("inline-script-%d.js", i+1)
}
