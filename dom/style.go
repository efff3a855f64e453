package dom

import (
	"strconv"
	"strings"
)

// Style is an element's inline style declaration.
type Style struct {
	element      *Element
	declarations map[string]string
	order        []string
}

func newStyle(element *Element) *Style {
	s := &Style{
		element:      element,
		declarations: make(map[string]string),
	}
	if element != nil {
		s.parse(element.GetAttribute("style"))
	}
	return s
}

// CSSText returns the declarations in the order they were set.
func (s *Style) CSSText() string {
	parts := make([]string, 0, len(s.order))
	for _, prop := range s.order {
		parts = append(parts, prop+": "+s.declarations[prop])
	}
	return strings.Join(parts, "; ")
}

// Get returns the value of property, or "".
func (s *Style) Get(property string) string {
	return s.declarations[normalizePropertyName(property)]
}

// Set sets property. An empty value removes it.
func (s *Style) Set(property, value string) {
	property = normalizePropertyName(property)
	if property == "" {
		return
	}
	if value == "" {
		s.remove(property)
	} else {
		if _, ok := s.declarations[property]; !ok {
			s.order = append(s.order, property)
		}
		s.declarations[property] = value
	}
	s.sync()
}

// Length returns the value of property in pixels. Bare numbers count as
// pixels; anything else reports false.
func (s *Style) Length(property string) (float64, bool) {
	return ParseLength(s.Get(property))
}

// ParseLength parses "12", "12px" or "-3.5px".
func ParseLength(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	v = strings.TrimSuffix(v, "px")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (s *Style) remove(property string) {
	if _, ok := s.declarations[property]; !ok {
		return
	}
	delete(s.declarations, property)
	for i, p := range s.order {
		if p == property {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Style) parse(text string) {
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		colon := strings.Index(part, ":")
		if colon == -1 {
			continue
		}
		property := normalizePropertyName(strings.TrimSpace(part[:colon]))
		value := strings.TrimSpace(part[colon+1:])
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if property == "" || value == "" {
			continue
		}
		if _, ok := s.declarations[property]; !ok {
			s.order = append(s.order, property)
		}
		s.declarations[property] = value
	}
}

func (s *Style) sync() {
	if s.element == nil {
		return
	}
	if text := s.CSSText(); text == "" {
		s.element.deleteAttr("style")
	} else {
		s.element.setAttr("style", text)
	}
}

// normalizePropertyName converts camelCase to kebab-case and lowercases.
func normalizePropertyName(name string) string {
	if name == "" || strings.Contains(name, "-") {
		return strings.ToLower(name)
	}
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteByte(byte(r - 'A' + 'a'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
