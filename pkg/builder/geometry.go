package builder

import (
	"math"

	"github.com/dukex/caseflow/pkg/models"
)

const (
	// NodeSize is the width and height of every node on the canvas.
	NodeSize = 96
	// ArrowPadding keeps arrow heads off the target outline.
	ArrowPadding = 5
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a drawable edge from the source outline to the target outline.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// NodeCenter returns the center of the node's bounding box.
func NodeCenter(n models.Node) Point {
	return Point{X: n.X + NodeSize/2, Y: n.Y + NodeSize/2}
}

// BoundaryRadius is the distance from the node center to its outline along angle.
// Round nodes are circles; Gateway nodes are diamonds.
func BoundaryRadius(n models.Node, angle float64) float64 {
	radius := float64(NodeSize / 2)

	if n.Type.Shape() == models.NodeShapeDiamond {
		return radius / (math.Abs(math.Cos(angle)) + math.Abs(math.Sin(angle)))
	}

	return radius
}

// EdgeSegment clips the line between two node centers to their outlines. The
// target end is pulled back by ArrowPadding. ok is false when the centers coincide.
func EdgeSegment(source, target models.Node) (Segment, bool) {
	from := NodeCenter(source)
	to := NodeCenter(target)

	dx := to.X - from.X
	dy := to.Y - from.Y

	if dx == 0 && dy == 0 {
		return Segment{}, false
	}

	angle := math.Atan2(dy, dx)
	sourceRadius := BoundaryRadius(source, angle)
	targetRadius := BoundaryRadius(target, angle+math.Pi) + ArrowPadding

	return Segment{
		From: Point{X: from.X + sourceRadius*math.Cos(angle), Y: from.Y + sourceRadius*math.Sin(angle)},
		To:   Point{X: to.X - targetRadius*math.Cos(angle), Y: to.Y - targetRadius*math.Sin(angle)},
	}, true
}

// Layout returns the drawable segment of every edge whose endpoints exist and differ.
func Layout(doc models.Document) map[string]Segment {
	segments := make(map[string]Segment, len(doc.Edges))

	for _, e := range doc.Edges {
		source, ok := doc.Node(e.Source)
		if !ok {
			continue
		}

		target, ok := doc.Node(e.Target)
		if !ok {
			continue
		}

		if segment, ok := EdgeSegment(source, target); ok {
			segments[e.ID] = segment
		}
	}

	return segments
}
