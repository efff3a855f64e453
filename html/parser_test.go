package html

import (
	"strings"
	"testing"

	"github.com/chrisuehlinger/scrollwatch/dom"
)

func TestLoad_BasicDocument(t *testing.T) {
	input := `<!DOCTYPE html>
<html lang="en">
<head><title> Test </title></head>
<body class="page"><p>Hello, World!</p></body>
</html>`

	w := dom.NewWindow(1000, 800)
	page, err := Load(w, input)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	doc := page.Document
	if doc != w.Document() {
		t.Error("Load should fill the window's document")
	}
	if page.Title != "Test" {
		t.Errorf("Expected title 'Test', got %q", page.Title)
	}
	if got := doc.DocumentElement().GetAttribute("lang"); got != "en" {
		t.Errorf("Expected lang='en' on <html>, got %q", got)
	}
	if got := doc.Body().GetAttribute("class"); got != "page" {
		t.Errorf("Expected class='page' on <body>, got %q", got)
	}
	if len(doc.Head().Children()) != 1 || doc.Head().Children()[0].TagName() != "title" {
		t.Errorf("Expected a single <title> in head, got %v", doc.Head().Children())
	}
	ps := doc.GetElementsByTagName("p")
	if len(ps) != 1 {
		t.Fatalf("Expected one <p>, got %d", len(ps))
	}
	if ps[0].ParentElement() != doc.Body() {
		t.Error("<p> should be a child of the document body")
	}
	if ps[0].TextContent() != "Hello, World!" {
		t.Errorf("Expected text 'Hello, World!', got %q", ps[0].TextContent())
	}
}

func TestLoad_MalformedHTML(t *testing.T) {
	// HTML5 parser should handle malformed HTML gracefully
	input := `<p>unclosed paragraph<div>nested div</p></div>`

	page, err := Load(dom.NewWindow(800, 600), input)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(page.Document.GetElementsByTagName("div")) != 1 {
		t.Error("Expected the parser to recover the <div>")
	}
}

func TestLoad_Attributes(t *testing.T) {
	input := `<div id="main" class="container" data-value="123" style="height: 40px">content</div>`

	page, err := Load(dom.NewWindow(800, 600), input)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	div := page.Document.GetElementByID("main")
	if div == nil {
		t.Fatal("Could not find div element")
	}
	if div.GetAttribute("class") != "container" {
		t.Errorf("Expected class='container', got '%s'", div.GetAttribute("class"))
	}
	if div.GetAttribute("data-value") != "123" {
		t.Errorf("Expected data-value='123', got '%s'", div.GetAttribute("data-value"))
	}
	if h, ok := div.Style().Length("height"); !ok || h != 40 {
		t.Errorf("Expected inline height 40, got %v (%v)", h, ok)
	}
	want := []string{"id", "class", "data-value", "style"}
	if got := div.AttributeNames(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Attribute order: got %v, expected %v", got, want)
	}
}

func TestLoad_TextContent(t *testing.T) {
	page, err := Load(dom.NewWindow(800, 600), "<div id=\"d\">Hello <span>World</span></div>\n\n")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	div := page.Document.GetElementByID("d")
	if div == nil {
		t.Fatal("Could not find div element")
	}
	if got := div.TextContent(); got != "Hello World" {
		t.Errorf("Expected 'Hello World', got %q", got)
	}
	if got := page.Document.Body().Children(); len(got) != 1 {
		t.Errorf("Whitespace must not create nodes, body has %v", got)
	}
}

func TestLoad_Scripts(t *testing.T) {
	input := `<head><script src="lib.js"></script></head>
<body>
<div id="target"></div>
<script>scrollWatch.observe("target");</script>
</body>`

	page, err := Load(dom.NewWindow(800, 600), input)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(page.Scripts) != 2 {
		t.Fatalf("Expected 2 scripts, got %d", len(page.Scripts))
	}
	if page.Scripts[0].Src != "lib.js" || page.Scripts[0].Text != "" {
		t.Errorf("First script wrong: %+v", page.Scripts[0])
	}
	if page.Scripts[1].Text != `scrollWatch.observe("target");` {
		t.Errorf("Second script wrong: %+v", page.Scripts[1])
	}
	if got := page.Document.GetElementsByTagName("script"); len(got) != 2 {
		t.Errorf("Script elements should stay in the tree, got %d", len(got))
	}
}

func TestParseFragment(t *testing.T) {
	w := dom.NewWindow(800, 600)
	list := w.Document().CreateElement("ul")
	if err := w.Document().Body().AppendChild(list); err != nil {
		t.Fatal(err)
	}

	if err := ParseFragment(list, `<li id="a">one</li><li id="b">two</li>`); err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}

	items := list.Children()
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[1].ID() != "b" || items[1].TextContent() != "two" {
		t.Errorf("Second item wrong: %v %q", items[1], items[1].TextContent())
	}
	if w.Document().GetElementByID("a") != items[0] {
		t.Error("Fragment elements should be reachable from the document")
	}
}
