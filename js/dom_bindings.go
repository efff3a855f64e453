package js

import (
	"github.com/dop251/goja"

	"github.com/chrisuehlinger/scrollwatch/dom"
	"github.com/chrisuehlinger/scrollwatch/geom"
	"github.com/chrisuehlinger/scrollwatch/html"
)

// DOMBinder exposes a dom.Window and its document to JavaScript.
type DOMBinder struct {
	runtime    *Runtime
	window     *dom.Window
	elementMap map[*dom.Element]*goja.Object // same JS object for the same element
	frames     map[int64]bool                // animation frame id -> cancelled
	nextFrame  int64
}

// NewDOMBinder creates a DOM binder for the given runtime.
func NewDOMBinder(runtime *Runtime) *DOMBinder {
	return &DOMBinder{
		runtime:    runtime,
		elementMap: make(map[*dom.Element]*goja.Object),
		frames:     make(map[int64]bool),
	}
}

// Window returns the bound window, or nil before BindWindow.
func (b *DOMBinder) Window() *dom.Window {
	return b.window
}

// BindWindow installs document and the scrolling parts of window.
func (b *DOMBinder) BindWindow(w *dom.Window) {
	vm := b.runtime.vm
	b.window = w
	window := vm.GlobalObject()

	b.defineGetter(window, "innerWidth", func() any { return w.InnerWidth() })
	b.defineGetter(window, "innerHeight", func() any { return w.InnerHeight() })
	b.defineGetter(window, "scrollY", func() any { return w.ScrollY() })
	b.defineGetter(window, "pageYOffset", func() any { return w.ScrollY() })

	window.Set("scrollTo", func(call goja.FunctionCall) goja.Value {
		w.ScrollTo(scrollArgument(call))
		return goja.Undefined()
	})
	window.Set("scroll", window.Get("scrollTo"))
	window.Set("scrollBy", func(call goja.FunctionCall) goja.Value {
		w.ScrollBy(scrollArgument(call))
		return goja.Undefined()
	})
	window.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		return b.addEventListener(call, w.AddEventListener)
	})
	window.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("requestAnimationFrame: callback is not a function"))
		}
		b.nextFrame++
		id := b.nextFrame
		b.frames[id] = false
		w.RequestAnimationFrame(func() {
			cancelled := b.frames[id]
			delete(b.frames, id)
			if !cancelled {
				b.runtime.call(callback, goja.Undefined(), vm.ToValue(b.runtime.Now()))
			}
		})
		return vm.ToValue(id)
	})
	window.Set("cancelAnimationFrame", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).ToInteger()
		if _, ok := b.frames[id]; ok {
			b.frames[id] = true
		}
		return goja.Undefined()
	})

	vm.Set("document", b.bindDocument(w.Document()))
}

func (b *DOMBinder) bindDocument(doc *dom.Document) *goja.Object {
	vm := b.runtime.vm
	jsDoc := vm.NewObject()
	jsDoc.Set("_goDoc", doc)

	b.defineGetter(jsDoc, "documentElement", func() any { return b.BindElement(doc.DocumentElement()) })
	b.defineGetter(jsDoc, "scrollingElement", func() any { return b.BindElement(doc.DocumentElement()) })
	b.defineGetter(jsDoc, "head", func() any { return b.BindElement(doc.Head()) })
	b.defineGetter(jsDoc, "body", func() any { return b.BindElement(doc.Body()) })

	jsDoc.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return b.elementOrNull(doc.GetElementByID(call.Argument(0).String()))
	})
	jsDoc.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		var out []any
		for _, el := range doc.GetElementsByTagName(call.Argument(0).String()) {
			out = append(out, b.BindElement(el))
		}
		return vm.NewArray(out...)
	})
	jsDoc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		return b.BindElement(doc.CreateElement(call.Argument(0).String()))
	})
	return jsDoc
}

// BindElement returns the JS object for el, creating it on first use.
func (b *DOMBinder) BindElement(el *dom.Element) *goja.Object {
	if obj, ok := b.elementMap[el]; ok {
		return obj
	}
	vm := b.runtime.vm
	obj := vm.NewObject()
	b.elementMap[el] = obj
	obj.Set("_goElement", el)

	b.defineGetter(obj, "tagName", func() any { return el.TagName() })
	b.defineGetter(obj, "scrollHeight", func() any { return el.ScrollHeight() })
	b.defineGetter(obj, "clientHeight", func() any { return el.ClientHeight() })
	b.defineGetter(obj, "parentElement", func() any { return b.elementOrNull(el.ParentElement()) })
	b.defineAccessor(obj, "id",
		func() any { return el.ID() },
		func(v goja.Value) { el.SetID(v.String()) })
	b.defineAccessor(obj, "scrollTop",
		func() any { return el.ScrollTop() },
		func(v goja.Value) { el.ScrollTo(v.ToFloat()) })
	b.defineAccessor(obj, "textContent",
		func() any { return el.TextContent() },
		func(v goja.Value) { el.SetTextContent(v.String()) })
	b.defineAccessor(obj, "innerHTML",
		func() any { return "" },
		func(v goja.Value) {
			for _, c := range el.Children() {
				c.Remove()
			}
			el.SetTextContent("")
			if err := html.ParseFragment(el, v.String()); err != nil {
				panic(vm.NewGoError(err))
			}
		})

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if !el.HasAttribute(name) {
			return goja.Null()
		}
		return vm.ToValue(el.GetAttribute(name))
	})
	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		el.SetAttribute(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := b.goElement(call.Argument(0))
		if child == nil {
			panic(vm.NewTypeError("appendChild: argument is not an element"))
		}
		if err := el.AppendChild(child); err != nil {
			panic(vm.NewGoError(err))
		}
		return call.Argument(0)
	})
	obj.Set("remove", func(call goja.FunctionCall) goja.Value {
		el.Remove()
		return goja.Undefined()
	})
	obj.Set("getBoundingClientRect", func(call goja.FunctionCall) goja.Value {
		return b.rectObject(el.GetBoundingClientRect())
	})
	obj.Set("scrollTo", func(call goja.FunctionCall) goja.Value {
		el.ScrollTo(scrollArgument(call))
		return goja.Undefined()
	})
	obj.Set("scrollBy", func(call goja.FunctionCall) goja.Value {
		el.ScrollBy(scrollArgument(call))
		return goja.Undefined()
	})
	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		return b.addEventListener(call, el.AddEventListener)
	})

	style := vm.NewObject()
	style.Set("getPropertyValue", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(el.Style().Get(call.Argument(0).String()))
	})
	style.Set("setProperty", func(call goja.FunctionCall) goja.Value {
		el.Style().Set(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	style.Set("removeProperty", func(call goja.FunctionCall) goja.Value {
		el.Style().Set(call.Argument(0).String(), "")
		return goja.Undefined()
	})
	obj.Set("style", style)

	return obj
}

// goElement returns the element behind a bound JS object, or nil.
func (b *DOMBinder) goElement(v goja.Value) *dom.Element {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil {
		return nil
	}
	goEl := obj.Get("_goElement")
	if goEl == nil {
		return nil
	}
	el, _ := goEl.Export().(*dom.Element)
	return el
}

func (b *DOMBinder) elementOrNull(el *dom.Element) goja.Value {
	if el == nil {
		return goja.Null()
	}
	return b.BindElement(el)
}

func (b *DOMBinder) rectObject(r geom.Rect) *goja.Object {
	obj := b.runtime.vm.NewObject()
	obj.Set("x", r.X)
	obj.Set("y", r.Y)
	obj.Set("width", r.Width)
	obj.Set("height", r.Height)
	obj.Set("top", r.Top())
	obj.Set("right", r.Right())
	obj.Set("bottom", r.Bottom())
	obj.Set("left", r.Left())
	return obj
}

// addEventListener binds addEventListener(type, fn, options) to a dom
// registration function. The listener runs as a macrotask, after the code
// that caused the event. It returns a function that removes the listener.
func (b *DOMBinder) addEventListener(call goja.FunctionCall, add func(string, dom.Listener, ...dom.ListenerOptions) func()) goja.Value {
	vm := b.runtime.vm
	eventType := call.Argument(0).String()
	callback, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		return goja.Undefined()
	}
	var opts dom.ListenerOptions
	if o, ok := call.Argument(2).(*goja.Object); ok {
		opts.Once = o.Get("once") != nil && o.Get("once").ToBoolean()
		opts.Passive = o.Get("passive") != nil && o.Get("passive").ToBoolean()
	}
	remove := add(eventType, func(ev dom.Event) {
		event := vm.NewObject()
		event.Set("type", ev.Type)
		switch target := ev.Target.(type) {
		case *dom.Element:
			event.Set("target", b.BindElement(target))
		case *dom.Window:
			event.Set("target", vm.GlobalObject())
		}
		b.runtime.eventLoop.queueMacrotask(callback, []goja.Value{event})
	}, opts)
	return vm.ToValue(func(goja.FunctionCall) goja.Value {
		remove()
		return goja.Undefined()
	})
}

func (b *DOMBinder) defineGetter(obj *goja.Object, name string, get func() any) {
	vm := b.runtime.vm
	_ = obj.DefineAccessorProperty(name, vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(get())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
}

func (b *DOMBinder) defineAccessor(obj *goja.Object, name string, get func() any, set func(goja.Value)) {
	vm := b.runtime.vm
	_ = obj.DefineAccessorProperty(name, vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(get())
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		set(call.Argument(0))
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)
}

// scrollArgument reads the y offset of scrollTo(x, y), scrollTo({top}) or
// scrollBy(x, y) calls. A single number is taken as the y offset.
func scrollArgument(call goja.FunctionCall) float64 {
	if o, ok := call.Argument(0).(*goja.Object); ok {
		if top := o.Get("top"); top != nil && !goja.IsUndefined(top) {
			return top.ToFloat()
		}
		return 0
	}
	if len(call.Arguments) < 2 {
		return call.Argument(0).ToFloat()
	}
	return call.Argument(1).ToFloat()
}
