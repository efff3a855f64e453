// Package html loads HTML into a dom.Document using golang.org/x/net/html
// as the underlying parser implementation.
package html

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/scrollwatch/dom"
)

// Script is a <script> element found while loading a page, in document
// order. Src is set for external scripts; Text holds inline source.
type Script struct {
	Src  string
	Text string
}

// Page is the result of loading HTML into a window.
type Page struct {
	Document *dom.Document
	Title    string
	Scripts  []Script
}

// Load parses htmlContent and appends its content to w's document.
func Load(w *dom.Window, htmlContent string) (*Page, error) {
	return LoadReader(w, strings.NewReader(htmlContent))
}

// LoadReader parses HTML from r and appends its content to w's document.
// Attributes of <html>, <head> and <body> are copied to the document's own
// elements.
func LoadReader(w *dom.Window, r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := w.Document()
	page := &Page{Document: doc}
	b := &builder{doc: doc, page: page}

	htmlNode := findElement(root, atom.Html)
	if htmlNode == nil {
		return page, nil
	}
	b.copyAttributes(doc.DocumentElement(), htmlNode)
	for c := htmlNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Head:
			b.copyAttributes(doc.Head(), c)
			b.children(doc.Head(), c)
		case atom.Body:
			b.copyAttributes(doc.Body(), c)
			b.children(doc.Body(), c)
		default:
			b.node(doc.Body(), c)
		}
	}
	return page, nil
}

// ParseFragment parses fragment in the context of parent and appends the
// resulting elements to it.
func ParseFragment(parent *dom.Element, fragment string) error {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     parent.TagName(),
		DataAtom: atom.Lookup([]byte(parent.TagName())),
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	b := &builder{doc: parent.Document(), page: &Page{Document: parent.Document()}}
	for _, n := range nodes {
		b.node(parent, n)
	}
	return nil
}

type builder struct {
	doc  *dom.Document
	page *Page
}

func (b *builder) children(parent *dom.Element, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.node(parent, c)
	}
}

// node converts n and its subtree. Comments and doctypes are dropped, as is
// text that is only whitespace.
func (b *builder) node(parent *dom.Element, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			parent.AppendText(n.Data)
		}
	case html.ElementNode:
		el := b.doc.CreateElement(n.Data)
		b.copyAttributes(el, n)
		_ = parent.AppendChild(el)
		switch n.DataAtom {
		case atom.Script:
			b.page.Scripts = append(b.page.Scripts, Script{
				Src:  el.GetAttribute("src"),
				Text: rawText(n),
			})
			return
		case atom.Title:
			if b.page.Title == "" {
				b.page.Title = strings.TrimSpace(rawText(n))
			}
		}
		b.children(el, n)
	}
}

func (b *builder) copyAttributes(el *dom.Element, n *html.Node) {
	for _, attr := range n.Attr {
		if attr.Namespace != "" {
			continue
		}
		el.SetAttribute(attr.Key, attr.Val)
	}
}

func rawText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
