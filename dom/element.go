package dom

import (
	"math"
	"strings"

	"github.com/chrisuehlinger/scrollwatch/geom"
)

// Element is a node of the document tree. Besides the tree it carries the
// geometry layout assigns to it and, for scroll containers, a scroll offset.
type Element struct {
	doc       *Document
	tagName   string
	attrs     map[string]string
	attrOrder []string
	style     *Style
	text      string

	parent   *Element
	children []*Element

	// Border box in document coordinates, set by layout.
	box          geom.Rect
	scrollHeight float64
	scrollable   bool
	scrollTop    float64

	events *EventTarget
}

func newElement(doc *Document, tagName string) *Element {
	return &Element{
		doc:     doc,
		tagName: strings.ToLower(tagName),
		attrs:   make(map[string]string),
		events:  NewEventTarget(),
	}
}

// Document returns the element's owner document.
func (e *Element) Document() *Document {
	return e.doc
}

// TagName returns the lower-case tag name.
func (e *Element) TagName() string {
	return e.tagName
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return e.attrs["id"]
}

// SetID sets the id attribute.
func (e *Element) SetID(id string) {
	e.SetAttribute("id", id)
}

// GetAttribute returns the value of the named attribute, or "".
func (e *Element) GetAttribute(name string) string {
	return e.attrs[strings.ToLower(name)]
}

// HasAttribute reports whether the named attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.attrs[strings.ToLower(name)]
	return ok
}

// SetAttribute sets the value of the named attribute.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	e.setAttr(name, value)
	if name == "style" {
		e.style = nil
	}
}

// RemoveAttribute removes the named attribute.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	e.deleteAttr(name)
	if name == "style" {
		e.style = nil
	}
}

func (e *Element) setAttr(name, value string) {
	if _, ok := e.attrs[name]; !ok {
		e.attrOrder = append(e.attrOrder, name)
	}
	e.attrs[name] = value
}

func (e *Element) deleteAttr(name string) {
	if _, ok := e.attrs[name]; !ok {
		return
	}
	delete(e.attrs, name)
	for i, n := range e.attrOrder {
		if n == name {
			e.attrOrder = append(e.attrOrder[:i], e.attrOrder[i+1:]...)
			break
		}
	}
}

// AttributeNames returns the attribute names in the order they were set.
func (e *Element) AttributeNames() []string {
	names := make([]string, len(e.attrOrder))
	copy(names, e.attrOrder)
	return names
}

// Style returns the inline style declaration.
func (e *Element) Style() *Style {
	if e.style == nil {
		e.style = newStyle(e)
	}
	return e.style
}

// TextContent returns the text of the element and its descendants.
func (e *Element) TextContent() string {
	var b strings.Builder
	e.Walk(func(el *Element) bool {
		b.WriteString(el.text)
		return true
	})
	return b.String()
}

// SetTextContent replaces the element's own text.
func (e *Element) SetTextContent(text string) {
	e.text = text
}

// AppendText adds text after the element's own text.
func (e *Element) AppendText(text string) {
	e.text += text
}

// ParentElement returns the parent, or nil.
func (e *Element) ParentElement() *Element {
	return e.parent
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// AppendChild appends child, removing it from its previous parent first.
func (e *Element) AppendChild(child *Element) error {
	if child == nil {
		return ErrHierarchyRequest("cannot append a nil element")
	}
	if child.doc != e.doc {
		return ErrWrongDocument("element belongs to another document")
	}
	for p := e; p != nil; p = p.parent {
		if p == child {
			return ErrHierarchyRequest("the new child is an ancestor of the parent")
		}
	}
	if child.parent != nil {
		if err := child.parent.RemoveChild(child); err != nil {
			return err
		}
	}
	child.parent = e
	e.children = append(e.children, child)
	return nil
}

// RemoveChild detaches child from e.
func (e *Element) RemoveChild(child *Element) error {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i:i], e.children[i+1:]...)
			child.parent = nil
			return nil
		}
	}
	return ErrNotFound("the element is not a child of this element")
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e.parent != nil {
		_ = e.parent.RemoveChild(e)
	}
}

// Walk visits e and its descendants depth first until fn returns false.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Box returns the border box assigned by layout, in document coordinates.
func (e *Element) Box() geom.Rect {
	return e.box
}

// SetBox assigns the border box. Observers registered with ObserveResize
// are notified when the size changes.
func (e *Element) SetBox(r geom.Rect) {
	resized := r.Width != e.box.Width || r.Height != e.box.Height
	e.box = r
	e.clampScroll()
	if resized {
		e.events.DispatchEvent(Event{Type: "resize", Target: e})
	}
}

// ScrollHeight returns the height of the element's content.
func (e *Element) ScrollHeight() float64 {
	return math.Max(e.scrollHeight, e.box.Height)
}

// SetScrollHeight sets the height of the element's content.
func (e *Element) SetScrollHeight(h float64) {
	e.scrollHeight = h
	e.clampScroll()
}

// ClientHeight returns the visible height.
func (e *Element) ClientHeight() float64 {
	return e.box.Height
}

// Scrollable reports whether the element is a scroll container.
func (e *Element) Scrollable() bool {
	return e.scrollable
}

// SetScrollable marks the element as a scroll container.
func (e *Element) SetScrollable(v bool) {
	e.scrollable = v
	if !v {
		e.scrollTop = 0
	}
}

// ScrollTop returns the scroll offset.
func (e *Element) ScrollTop() float64 {
	return e.scrollTop
}

// ScrollTo scrolls a scroll container to y, clamped to its content, and
// fires "scroll" when the offset changed.
func (e *Element) ScrollTo(y float64) {
	if !e.scrollable {
		return
	}
	y = clamp(y, 0, e.maxScroll())
	if y == e.scrollTop {
		return
	}
	e.scrollTop = y
	e.events.DispatchEvent(Event{Type: "scroll", Target: e})
}

// ScrollBy scrolls by dy.
func (e *Element) ScrollBy(dy float64) {
	e.ScrollTo(e.scrollTop + dy)
}

func (e *Element) maxScroll() float64 {
	return math.Max(0, e.scrollHeight-e.box.Height)
}

func (e *Element) clampScroll() {
	if e.scrollTop > e.maxScroll() {
		e.scrollTop = e.maxScroll()
	}
}

// GetBoundingClientRect returns the border box relative to the window,
// after the window's and every ancestor's scroll offset.
func (e *Element) GetBoundingClientRect() geom.Rect {
	dy := 0.0
	for p := e.parent; p != nil; p = p.parent {
		dy += p.scrollTop
	}
	if e.doc != nil && e.doc.window != nil {
		dy += e.doc.window.scrollY
	}
	return e.box.Translate(0, -dy)
}

// AddEventListener registers fn for eventType.
func (e *Element) AddEventListener(eventType string, fn Listener, opts ...ListenerOptions) func() {
	return e.events.AddEventListener(eventType, fn, opts...)
}

// DispatchEvent fires an event of the given type at e.
func (e *Element) DispatchEvent(eventType string) int {
	return e.events.DispatchEvent(Event{Type: eventType, Target: e})
}

// AddScrollListener registers a passive scroll listener.
func (e *Element) AddScrollListener(fn func()) func() {
	return e.events.AddEventListener("scroll", func(Event) { fn() }, ListenerOptions{Passive: true})
}

// ObserveResize calls fn whenever layout changes the element's size.
func (e *Element) ObserveResize(fn func()) func() {
	return e.events.AddEventListener("resize", func(Event) { fn() })
}

func (e *Element) String() string {
	if id := e.ID(); id != "" {
		return e.tagName + "#" + id
	}
	return e.tagName
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
