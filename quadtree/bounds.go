package quadtree

// bounds is the region a node claims points from. Edges are half-open
// (min <= v < max) except an east or south edge lying on the universe
// boundary, which is closed so the universe accepts its own corners.
type bounds struct {
	minX, minY float64
	maxX, maxY float64

	closedEast  bool
	closedSouth bool
}

func newUniverseBounds(r Rect) bounds {
	return bounds{
		minX:        r.MinX(),
		minY:        r.MinY(),
		maxX:        r.MaxX(),
		maxY:        r.MaxY(),
		closedEast:  true,
		closedSouth: true,
	}
}

// contains only uses comparisons that hold, so a NaN coordinate is never
// contained.
func (b bounds) contains(c Coordinate) bool {
	return c.X >= b.minX && c.Y >= b.minY &&
		(c.X < b.maxX || (b.closedEast && c.X == b.maxX)) &&
		(c.Y < b.maxY || (b.closedSouth && c.Y == b.maxY))
}

func (b bounds) rect() Rect {
	return rectFromEdges(b.minX, b.minY, b.maxX, b.maxY)
}

// split returns the NE, NW, SE and SW quadrants. Both halves of a split use
// the same midpoint value so the quadrants tile b without gap or overlap.
func (b bounds) split() [quadrantCount]bounds {
	midX := b.minX + (b.maxX-b.minX)/2
	midY := b.minY + (b.maxY-b.minY)/2

	var q [quadrantCount]bounds
	q[NorthEast] = bounds{
		minX: midX, minY: b.minY, maxX: b.maxX, maxY: midY,
		closedEast: b.closedEast,
	}
	q[NorthWest] = bounds{
		minX: b.minX, minY: b.minY, maxX: midX, maxY: midY,
	}
	q[SouthEast] = bounds{
		minX: midX, minY: midY, maxX: b.maxX, maxY: b.maxY,
		closedEast:  b.closedEast,
		closedSouth: b.closedSouth,
	}
	q[SouthWest] = bounds{
		minX: b.minX, minY: midY, maxX: midX, maxY: b.maxY,
		closedSouth: b.closedSouth,
	}
	return q
}
