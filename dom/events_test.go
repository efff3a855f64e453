package dom

import (
	"testing"
)

func TestEventTarget_Dispatch(t *testing.T) {
	et := NewEventTarget()
	var order []int
	et.AddEventListener("scroll", func(Event) { order = append(order, 1) })
	remove := et.AddEventListener("scroll", func(Event) { order = append(order, 2) })
	et.AddEventListener("resize", func(Event) { order = append(order, 3) })

	if n := et.DispatchEvent(Event{Type: "scroll"}); n != 2 {
		t.Errorf("Expected 2 listeners called, got %d", n)
	}
	remove()
	remove()
	et.DispatchEvent(Event{Type: "scroll"})

	want := []int{1, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Call %d: expected %d, got %d", i, want[i], order[i])
		}
	}
}

func TestEventTarget_Once(t *testing.T) {
	et := NewEventTarget()
	count := 0
	et.AddEventListener("resize", func(Event) { count++ }, ListenerOptions{Once: true})
	et.DispatchEvent(Event{Type: "resize"})
	et.DispatchEvent(Event{Type: "resize"})
	if count != 1 {
		t.Errorf("Expected once listener to run once, got %d", count)
	}
	if et.ListenerCount("resize") != 0 {
		t.Errorf("Expected once listener to be removed, got %d", et.ListenerCount("resize"))
	}
}

func TestEventTarget_MutationDuringDispatch(t *testing.T) {
	et := NewEventTarget()
	var removeSecond func()
	added, second := 0, 0
	et.AddEventListener("scroll", func(Event) {
		removeSecond()
		et.AddEventListener("scroll", func(Event) { added++ })
	})
	removeSecond = et.AddEventListener("scroll", func(Event) { second++ })

	et.DispatchEvent(Event{Type: "scroll"})
	if second != 0 {
		t.Error("A listener removed during dispatch must not run")
	}
	if added != 0 {
		t.Error("A listener added during dispatch must wait for the next event")
	}
	et.DispatchEvent(Event{Type: "scroll"})
	if added != 1 {
		t.Errorf("Expected added listener to run once, got %d", added)
	}
}

func TestStyle(t *testing.T) {
	doc := NewWindow(800, 600).Document()
	el := doc.CreateElement("div")
	el.SetAttribute("style", "height: 200px; overflow:scroll ; marginTop: 12 !important; bogus")

	s := el.Style()
	if s.Get("overflow") != "scroll" {
		t.Errorf("Expected overflow 'scroll', got '%s'", s.Get("overflow"))
	}
	if h, ok := s.Length("height"); !ok || h != 200 {
		t.Errorf("Expected height 200, got %v (%v)", h, ok)
	}
	if m, ok := s.Length("margin-top"); !ok || m != 12 {
		t.Errorf("Expected margin-top 12, got %v (%v)", m, ok)
	}
	if _, ok := s.Length("overflow"); ok {
		t.Error("overflow is not a length")
	}

	s.Set("paddingTop", "4px")
	s.Set("overflow", "")
	if got := el.GetAttribute("style"); got != "height: 200px; margin-top: 12; padding-top: 4px" {
		t.Errorf("Unexpected style attribute: %q", got)
	}
}
