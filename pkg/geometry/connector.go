package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/bracketview/pkg/bracket"
)

// Vertical anchor of a connector on its target card, as a fraction of the
// card height, by slot.
const (
	anchorSlotA  = 0.25
	anchorSlotB  = 0.75
	anchorCenter = 0.5
)

// ConnectorLine is one feeder → next connector. Path always holds four
// points: source anchor, two corners at the horizontal midpoint, target
// anchor.
type ConnectorLine struct {
	ID   string  `json:"id"`
	Path []Point `json:"path"`
}

// LineID returns the connector id for a source and target match.
func LineID(sourceID, targetID int) string {
	return fmt.Sprintf("line-%d-to-%d", sourceID, targetID)
}

// D returns the path as SVG path data: "M x y L x y L x y L x y".
func (l ConnectorLine) D() string {
	var b strings.Builder
	for i, p := range l.Path {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatCoord(p.X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(p.Y))
	}
	return b.String()
}

// Start returns the first point of the path.
func (l ConnectorLine) Start() Point { return l.Path[0] }

// End returns the last point of the path.
func (l ConnectorLine) End() Point { return l.Path[len(l.Path)-1] }

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Connect synthesizes the staircase path from a source card to a target
// card. Boxes are in viewport coordinates; the result is relative to the
// container's content box.
//
// The flow is left-to-right when the source's left edge is strictly left of
// the target's, and right-to-left otherwise. The source anchor is the
// vertical middle of the source edge facing the target; the target anchor is
// on the target edge facing the source, at 25% of its height for slot 1, 75%
// for slot 2, and 50% for anything else. X coordinates include the scroll
// offset, Y coordinates do not.
func Connect(src, dst, container Rect, scroll Point, slot *int) []Point {
	var startX, endX float64
	if src.Left() < dst.Left() {
		startX, endX = src.Right(), dst.Left()
	} else {
		startX, endX = src.Left(), dst.Right()
	}
	startX = startX - container.X + scroll.X
	endX = endX - container.X + scroll.X

	startY := src.MidY() - container.Y
	endY := dst.Y + dst.Height*targetAnchor(slot) - container.Y

	midX := startX + (endX-startX)/2
	return []Point{
		{X: startX, Y: startY},
		{X: midX, Y: startY},
		{X: midX, Y: endY},
		{X: endX, Y: endY},
	}
}

func targetAnchor(slot *int) float64 {
	if slot == nil {
		return anchorCenter
	}
	switch *slot {
	case bracket.SlotA:
		return anchorSlotA
	case bracket.SlotB:
		return anchorSlotB
	}
	return anchorCenter
}
