package js

import (
	"fmt"
	"reflect"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/scrollwatch/dom"
	"github.com/chrisuehlinger/scrollwatch/placement"
	"github.com/chrisuehlinger/scrollwatch/scroll"
	"github.com/chrisuehlinger/scrollwatch/watch"
)

// ScrollWatchBinder installs the scrollWatch global:
//
//	var stop = scrollWatch.observe(el, {start: "bottom", end: "50%"}, function (e) {...});
//	var listener = scrollWatch.listen(el, {handlers: {inView: function (p) {...}}});
//
// Placements are strings in the CSS form ("top", "30%", "-12px"), numbers of
// pixels, or functions returning pixels.
type ScrollWatchBinder struct {
	runtime  *Runtime
	dom      *DOMBinder
	registry *scroll.Registry
}

// NewScrollWatchBinder creates a binder resolving elements through domBinder.
func NewScrollWatchBinder(runtime *Runtime, domBinder *DOMBinder, reg *scroll.Registry) *ScrollWatchBinder {
	return &ScrollWatchBinder{runtime: runtime, dom: domBinder, registry: reg}
}

// Bind sets the scrollWatch global.
func (b *ScrollWatchBinder) Bind() {
	vm := b.runtime.vm
	obj := vm.NewObject()
	obj.Set("observe", b.observe)
	obj.Set("listen", b.listen)
	vm.Set("scrollWatch", obj)
}

func (b *ScrollWatchBinder) observe(call goja.FunctionCall) goja.Value {
	vm := b.runtime.vm
	target := b.target(call.Argument(0))
	options := b.optionsObject(call.Argument(1))
	callback, ok := goja.AssertFunction(call.Argument(2))
	if !ok {
		panic(vm.NewTypeError("scrollWatch.observe: handler is not a function"))
	}

	opts := watch.RegisterOptions{
		Root:     b.root(options.Get("root")),
		Start:    b.placement(options.Get("start")),
		End:      b.placement(options.Get("end")),
		Boundary: stringOption(options.Get("boundary")),
		Context:  options.Get("context"),
		Handler: func(e scroll.Event) {
			b.runtime.call(callback, goja.Undefined(), b.eventObject(e))
		},
	}
	dispose, err := watch.Register(b.registry, target, opts)
	if err != nil {
		panic(vm.NewTypeError(fmt.Sprintf("scrollWatch.observe: %v", err)))
	}
	return vm.ToValue(func(goja.FunctionCall) goja.Value {
		dispose()
		return goja.Undefined()
	})
}

func (b *ScrollWatchBinder) listen(call goja.FunctionCall) goja.Value {
	vm := b.runtime.vm
	target := b.target(call.Argument(0))
	options := b.optionsObject(call.Argument(1))
	handlers := b.optionsObject(options.Get("handlers"))

	opts := watch.TrackOptions{
		Root:                b.root(options.Get("root")),
		Start:               b.placement(options.Get("start")),
		End:                 b.placement(options.Get("end")),
		Boundary:            stringOption(options.Get("boundary")),
		Before:              b.placement(options.Get("before")),
		After:               b.placement(options.Get("after")),
		ForceInViewBoundary: boolOption(options.Get("forceInViewBoundary")),
		Handlers: watch.Handlers{
			Before: b.progressHandler(handlers.Get("before")),
			InView: b.progressHandler(handlers.Get("inView")),
			After:  b.progressHandler(handlers.Get("after")),
			Always: b.progressHandler(handlers.Get("always")),
		},
	}
	if fn, ok := goja.AssertFunction(handlers.Get("onStateChange")); ok {
		opts.Handlers.OnStateChange = func(c watch.StateChange) watch.Signal {
			params := vm.NewObject()
			params.Set("target", b.targetValue(c.Target))
			params.Set("state", c.State.String())
			params.Set("oldState", c.Old.String())
			return signal(b.runtime.call(fn, goja.Undefined(), params))
		}
	}

	tracker, err := watch.Track(b.registry, target, opts)
	if err != nil {
		panic(vm.NewTypeError(fmt.Sprintf("scrollWatch.listen: %v", err)))
	}

	listener := vm.NewObject()
	_ = listener.DefineAccessorProperty("state", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(tracker.State().String())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	listener.Set("destroy", func(goja.FunctionCall) goja.Value {
		tracker.Stop()
		return goja.Undefined()
	})
	return listener
}

func (b *ScrollWatchBinder) progressHandler(v goja.Value) watch.ProgressHandler {
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil
	}
	vm := b.runtime.vm
	return func(p watch.Progress) watch.Signal {
		params := vm.NewObject()
		params.Set("target", b.targetValue(p.Target))
		params.Set("state", p.State.String())
		params.Set("distance", p.Distance)
		params.Set("total", p.Total)
		params.Set("ratio", p.Ratio())
		params.Set("targetRect", b.dom.rectObject(p.TargetRect))
		return signal(b.runtime.call(fn, goja.Undefined(), params))
	}
}

func (b *ScrollWatchBinder) eventObject(e scroll.Event) *goja.Object {
	obj := b.runtime.vm.NewObject()
	obj.Set("target", b.targetValue(e.Target))
	obj.Set("dist", e.Dist)
	obj.Set("total", e.Total)
	obj.Set("inRange", e.InRange)
	obj.Set("direction", e.Direction)
	obj.Set("start", e.Start)
	obj.Set("end", e.End)
	obj.Set("boundary", e.Boundary.String())
	obj.Set("context", e.Context)
	obj.Set("targetRect", b.dom.rectObject(e.TargetRect))
	obj.Set("rootRect", b.dom.rectObject(e.RootRect))
	return obj
}

func (b *ScrollWatchBinder) targetValue(t scroll.Target) goja.Value {
	if el, ok := t.(*dom.Element); ok {
		return b.dom.BindElement(el)
	}
	return goja.Null()
}

// target resolves an element object or an element id.
func (b *ScrollWatchBinder) target(v goja.Value) *dom.Element {
	if el := b.element(v); el != nil {
		return el
	}
	panic(b.runtime.vm.NewTypeError(fmt.Sprintf("scrollWatch: no element %s", formatValue(v))))
}

// root resolves the root option. Missing, the window object, the document
// or its root element all mean the window.
func (b *ScrollWatchBinder) root(v goja.Value) scroll.Container {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if obj, ok := v.(*goja.Object); ok && obj == b.runtime.vm.GlobalObject() {
		return nil
	}
	if obj, ok := v.(*goja.Object); ok {
		if goDoc := obj.Get("_goDoc"); goDoc != nil {
			if doc, ok := goDoc.Export().(*dom.Document); ok {
				return doc
			}
		}
	}
	el := b.element(v)
	if el == nil {
		panic(b.runtime.vm.NewTypeError(fmt.Sprintf("scrollWatch: no root element %s", formatValue(v))))
	}
	return el
}

func (b *ScrollWatchBinder) element(v goja.Value) *dom.Element {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if el := b.dom.goElement(v); el != nil {
		return el
	}
	if _, isObject := v.(*goja.Object); isObject || b.dom.Window() == nil {
		return nil
	}
	return b.dom.Window().Document().GetElementByID(v.String())
}

func (b *ScrollWatchBinder) placement(v goja.Value) placement.Placement {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if fn, ok := goja.AssertFunction(v); ok {
		return placement.Dynamic(func() float64 {
			return b.runtime.call(fn, goja.Undefined()).ToFloat()
		})
	}
	switch v.ExportType().Kind() {
	case reflect.Int64, reflect.Float64:
		return placement.Pixels(v.ToFloat())
	}
	p, err := placement.Parse(v.String())
	if err != nil {
		panic(b.runtime.vm.NewTypeError(err.Error()))
	}
	return p
}

// signal maps a handler's return value; the string "done" revokes it.
func signal(v goja.Value) watch.Signal {
	if v != nil && v.String() == "done" {
		return watch.Done
	}
	return watch.Continue
}

// optionsObject returns v as an object, or an empty stand-in.
func (b *ScrollWatchBinder) optionsObject(v goja.Value) *goja.Object {
	if obj, ok := v.(*goja.Object); ok && obj != nil {
		return obj
	}
	return b.runtime.vm.NewObject()
}

func stringOption(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

func boolOption(v goja.Value) bool {
	return v != nil && v.ToBoolean()
}
