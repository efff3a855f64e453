// Package layout handles the layout/box model calculations.
//
// Every box that is displayed is laid out as a block: boxes stack vertically
// inside their containing block. That is all the scroll engine needs to put
// targets at realistic document positions; there is no line layout.
package layout

import (
	"math"
	"strings"

	"github.com/chrisuehlinger/scrollwatch/dom"
	"github.com/chrisuehlinger/scrollwatch/geom"
)

// Dimensions represents the dimensions of a layout box.
type Dimensions struct {
	Content geom.Rect
	Padding EdgeSizes
	Border  EdgeSizes
	Margin  EdgeSizes
}

// EdgeSizes represents the sizes of edges (top, right, bottom, left).
type EdgeSizes struct {
	Top, Right, Bottom, Left float64
}

// BoxType represents the type of layout box.
type BoxType int

const (
	BlockBox BoxType = iota
	InlineBox
	InlineBlockBox
	NoneBox
)

// OverflowType represents the overflow property.
type OverflowType int

const (
	OverflowVisible OverflowType = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

// BoxSizing represents the box-sizing property.
type BoxSizing int

const (
	BoxSizingContentBox BoxSizing = iota
	BoxSizingBorderBox
)

// LayoutBox represents a box in the layout tree.
type LayoutBox struct {
	Dimensions Dimensions
	BoxType    BoxType
	BoxSizing  BoxSizing
	Overflow   OverflowType
	Element    *dom.Element
	Style      *dom.Style
	Children   []*LayoutBox

	// ContentHeight is the height of the in-flow children, which is what a
	// scroll container can scroll through.
	ContentHeight float64
}

// LayoutContext holds the viewport and the stack of containing blocks.
type LayoutContext struct {
	ViewportWidth    float64
	ViewportHeight   float64
	containingBlocks []*Dimensions
}

// NewLayoutContext creates a context whose initial containing block is the
// viewport.
func NewLayoutContext(width, height float64) *LayoutContext {
	return &LayoutContext{
		ViewportWidth:  width,
		ViewportHeight: height,
		containingBlocks: []*Dimensions{{
			Content: geom.Sized(width, height),
		}},
	}
}

// CurrentContainingBlock returns the innermost containing block.
func (ctx *LayoutContext) CurrentContainingBlock() *Dimensions {
	return ctx.containingBlocks[len(ctx.containingBlocks)-1]
}

// PushContainingBlock enters a new containing block.
func (ctx *LayoutContext) PushContainingBlock(d *Dimensions) {
	ctx.containingBlocks = append(ctx.containingBlocks, d)
}

// PopContainingBlock leaves the innermost containing block. The initial one
// is never popped.
func (ctx *LayoutContext) PopContainingBlock() {
	if len(ctx.containingBlocks) > 1 {
		ctx.containingBlocks = ctx.containingBlocks[:len(ctx.containingBlocks)-1]
	}
}

// Layout lays out doc against its window and writes the resulting boxes back
// to the elements.
func Layout(doc *dom.Document) *LayoutBox {
	w := doc.Window()
	ctx := NewLayoutContext(w.InnerWidth(), w.InnerHeight())
	root := BuildLayoutTree(doc.DocumentElement())
	root.Layout(ctx)
	root.Apply()
	return root
}

// BuildLayoutTree constructs a layout tree for el and its descendants.
func BuildLayoutTree(el *dom.Element) *LayoutBox {
	style := el.Style()
	display := style.Get("display")
	if display == "" {
		display = "block"
	}
	box := &LayoutBox{
		BoxType:   determineBoxType(display),
		BoxSizing: determineBoxSizing(style.Get("box-sizing")),
		Overflow:  determineOverflowType(style.Get("overflow")),
		Element:   el,
		Style:     style,
	}
	if box.BoxType == NoneBox {
		return box
	}
	for _, child := range el.Children() {
		box.Children = append(box.Children, BuildLayoutTree(child))
	}
	return box
}

// Layout lays the box out at the top of the current containing block.
func (box *LayoutBox) Layout(ctx *LayoutContext) {
	cb := ctx.CurrentContainingBlock()
	box.layoutBlock(ctx, cb, cb.Content.Y)
}

func (box *LayoutBox) layoutBlock(ctx *LayoutContext, cb *Dimensions, y float64) {
	if box.BoxType == NoneBox {
		box.Dimensions = Dimensions{Content: geom.NewRect(cb.Content.X, y, 0, 0)}
		return
	}
	box.calculateBlockWidth(cb)
	box.calculateBlockPosition(cb, y)

	ctx.PushContainingBlock(&box.Dimensions)
	childY := box.Dimensions.Content.Y
	for _, child := range box.Children {
		child.layoutBlock(ctx, &box.Dimensions, childY)
		if child.BoxType != NoneBox {
			childY = child.Dimensions.MarginBox().Bottom()
		}
	}
	ctx.PopContainingBlock()

	box.ContentHeight = childY - box.Dimensions.Content.Y
	box.calculateBlockHeight()
	box.applyRelativePosition()
}

// calculateBlockWidth resolves the horizontal edges and the content width.
// An auto width fills the containing block; auto side margins centre a box
// of explicit width.
func (box *LayoutBox) calculateBlockWidth(cb *Dimensions) {
	d := &box.Dimensions
	d.Padding.Left, d.Padding.Right = box.length("padding-left"), box.length("padding-right")
	d.Border.Left, d.Border.Right = box.borderWidth("border-left-width"), box.borderWidth("border-right-width")
	d.Margin.Left, d.Margin.Right = box.length("margin-left"), box.length("margin-right")
	extras := d.Padding.Left + d.Padding.Right + d.Border.Left + d.Border.Right

	width, explicit := box.explicit("width")
	if !explicit {
		d.Content.Width = math.Max(0, cb.Content.Width-extras-d.Margin.Left-d.Margin.Right)
		return
	}
	if box.BoxSizing == BoxSizingBorderBox {
		width = math.Max(0, width-extras)
	}
	d.Content.Width = width

	autoLeft, autoRight := box.isAuto("margin-left"), box.isAuto("margin-right")
	free := cb.Content.Width - width - extras - d.Margin.Left - d.Margin.Right
	switch {
	case autoLeft && autoRight:
		d.Margin.Left, d.Margin.Right = free/2, free/2
	case autoLeft:
		d.Margin.Left = free
	case autoRight:
		d.Margin.Right = free
	}
}

func (box *LayoutBox) calculateBlockPosition(cb *Dimensions, y float64) {
	d := &box.Dimensions
	d.Padding.Top, d.Padding.Bottom = box.length("padding-top"), box.length("padding-bottom")
	d.Border.Top, d.Border.Bottom = box.borderWidth("border-top-width"), box.borderWidth("border-bottom-width")
	d.Margin.Top, d.Margin.Bottom = box.length("margin-top"), box.length("margin-bottom")

	d.Content.X = cb.Content.X + d.Margin.Left + d.Border.Left + d.Padding.Left
	d.Content.Y = y + d.Margin.Top + d.Border.Top + d.Padding.Top
}

// calculateBlockHeight uses an explicit height when there is one (the
// style's height, else a data-height or height attribute) and the height of
// the content otherwise.
func (box *LayoutBox) calculateBlockHeight() {
	d := &box.Dimensions
	height, ok := box.explicit("height")
	if !ok && box.Element != nil {
		for _, attr := range []string{"data-height", "height"} {
			if h, found := dom.ParseLength(box.Element.GetAttribute(attr)); found {
				height, ok = h, true
				break
			}
		}
	}
	if !ok {
		d.Content.Height = box.ContentHeight
		return
	}
	if box.BoxSizing == BoxSizingBorderBox {
		height = math.Max(0, height-d.Padding.Top-d.Padding.Bottom-d.Border.Top-d.Border.Bottom)
	}
	d.Content.Height = height
}

// applyRelativePosition shifts a position: relative box by its top/left
// offsets. Its children keep the positions computed before the shift.
func (box *LayoutBox) applyRelativePosition() {
	if box.Style == nil || !strings.EqualFold(box.Style.Get("position"), "relative") {
		return
	}
	dx, _ := box.Style.Length("left")
	dy, _ := box.Style.Length("top")
	box.Dimensions.Content = box.Dimensions.Content.Translate(dx, dy)
}

// Apply writes the border boxes to the elements and marks scroll containers.
func (box *LayoutBox) Apply() {
	if box.Element == nil {
		return
	}
	d := box.Dimensions
	el := box.Element
	el.SetBox(d.BorderBox())
	scrollable := box.BoxType != NoneBox && (box.Overflow == OverflowScroll || box.Overflow == OverflowAuto)
	el.SetScrollable(scrollable)
	el.SetScrollHeight(box.ContentHeight + d.Padding.Top + d.Padding.Bottom + d.Border.Top + d.Border.Bottom)
	for _, child := range box.Children {
		child.Apply()
	}
}

// PaddingBox returns the area covered by content and padding.
func (d Dimensions) PaddingBox() geom.Rect {
	return expandedBy(d.Content, d.Padding)
}

// BorderBox returns the area covered by content, padding, and border.
func (d Dimensions) BorderBox() geom.Rect {
	return expandedBy(d.PaddingBox(), d.Border)
}

// MarginBox returns the area covered by content, padding, border, and margin.
func (d Dimensions) MarginBox() geom.Rect {
	return expandedBy(d.BorderBox(), d.Margin)
}

// expandedBy returns a rectangle expanded by the given edge sizes.
func expandedBy(r geom.Rect, edge EdgeSizes) geom.Rect {
	return geom.NewRect(
		r.X-edge.Left,
		r.Y-edge.Top,
		r.Width+edge.Left+edge.Right,
		r.Height+edge.Top+edge.Bottom,
	)
}

func determineBoxType(display string) BoxType {
	switch strings.ToLower(display) {
	case "block":
		return BlockBox
	case "inline-block":
		return InlineBlockBox
	case "none":
		return NoneBox
	default:
		return InlineBox
	}
}

func determineOverflowType(overflow string) OverflowType {
	switch strings.ToLower(overflow) {
	case "hidden":
		return OverflowHidden
	case "scroll":
		return OverflowScroll
	case "auto":
		return OverflowAuto
	default:
		return OverflowVisible
	}
}

func determineBoxSizing(boxSizing string) BoxSizing {
	if strings.EqualFold(boxSizing, "border-box") {
		return BoxSizingBorderBox
	}
	return BoxSizingContentBox
}
