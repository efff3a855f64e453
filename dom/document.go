// Package dom is an in-memory document host: a tree of elements with
// layout geometry, a window that scrolls and resizes, and the event plumbing
// the scroll engine listens to.
package dom

import (
	"strings"

	"github.com/chrisuehlinger/scrollwatch/geom"
)

// Document is the element tree of one window.
type Document struct {
	window          *Window
	documentElement *Element
	head            *Element
	body            *Element
}

func newDocument(w *Window) *Document {
	d := &Document{window: w}
	d.documentElement = newElement(d, "html")
	d.head = newElement(d, "head")
	d.body = newElement(d, "body")
	_ = d.documentElement.AppendChild(d.head)
	_ = d.documentElement.AppendChild(d.body)
	return d
}

// Window returns the document's window.
func (d *Document) Window() *Window {
	return d.window
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Element {
	return d.documentElement
}

// Head returns the <head> element.
func (d *Document) Head() *Element {
	return d.head
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.body
}

// CreateElement creates a detached element owned by d.
func (d *Document) CreateElement(tagName string) *Element {
	return newElement(d, tagName)
}

// GetElementByID returns the first element in tree order with the given id.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *Element
	d.documentElement.Walk(func(e *Element) bool {
		if e.ID() == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// GetElementsByTagName returns every element with the given tag name in tree
// order. "*" matches every element.
func (d *Document) GetElementsByTagName(tagName string) []*Element {
	tagName = strings.ToLower(tagName)
	var out []*Element
	d.documentElement.Walk(func(e *Element) bool {
		if tagName == "*" || e.tagName == tagName {
			out = append(out, e)
		}
		return true
	})
	return out
}

// ScrollHeight returns the height of the whole document.
func (d *Document) ScrollHeight() float64 {
	return d.documentElement.box.Height
}

// The document stands in for its window as a scroll container.

func (d *Document) GetBoundingClientRect() geom.Rect {
	return d.window.GetBoundingClientRect()
}

func (d *Document) ScrollTop() float64 {
	return d.window.ScrollTop()
}

func (d *Document) AddScrollListener(fn func()) func() {
	return d.window.AddScrollListener(fn)
}
