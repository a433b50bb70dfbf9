package quadtree

import "strconv"

// Coordinate is a position in the flat coordinate space of an index.
type Coordinate struct {
	X float64
	Y float64
}

func (c Coordinate) String() string {
	return "[" + strconv.FormatFloat(c.X, 'f', -1, 64) + "," + strconv.FormatFloat(c.Y, 'f', -1, 64) + "]"
}

// Size is the extent of a rectangle.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle. Origin is the minimum corner. Quadrant
// names are relative to it: north is toward MinY and west toward MinX, so
// with latitude as Y the northern quadrants hold the lower latitudes.
type Rect struct {
	Origin Coordinate
	Size   Size
}

// NewRect returns the rectangle with the given origin and extents.
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		Origin: Coordinate{X: x, Y: y},
		Size:   Size{Width: width, Height: height},
	}
}

func (r Rect) MinX() float64 { return r.Origin.X }
func (r Rect) MinY() float64 { return r.Origin.Y }
func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// MidX is the vertical split line shared by the western and eastern quadrants.
func (r Rect) MidX() float64 { return r.Origin.X + r.Size.Width/2 }

// MidY is the horizontal split line shared by the northern and southern
// quadrants.
func (r Rect) MidY() float64 { return r.Origin.Y + r.Size.Height/2 }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return !(r.Size.Width > 0) || !(r.Size.Height > 0)
}

func (r Rect) NW() Rect {
	return rectFromEdges(r.MinX(), r.MinY(), r.MidX(), r.MidY())
}

func (r Rect) NE() Rect {
	return rectFromEdges(r.MidX(), r.MinY(), r.MaxX(), r.MidY())
}

func (r Rect) SW() Rect {
	return rectFromEdges(r.MinX(), r.MidY(), r.MidX(), r.MaxY())
}

func (r Rect) SE() Rect {
	return rectFromEdges(r.MidX(), r.MidY(), r.MaxX(), r.MaxY())
}

// Contains reports whether c lies in the closed rectangle.
func (r Rect) Contains(c Coordinate) bool {
	return c.X >= r.MinX() &&
		c.X <= r.MaxX() &&
		c.Y >= r.MinY() &&
		c.Y <= r.MaxY()
}

// ContainsRect reports whether other lies entirely in the closed rectangle.
func (r Rect) ContainsRect(other Rect) bool {
	return other.MinX() >= r.MinX() &&
		other.MaxX() <= r.MaxX() &&
		other.MinY() >= r.MinY() &&
		other.MaxY() <= r.MaxY()
}

// Intersects reports whether the closed rectangles share at least one
// coordinate. Rectangles touching along an edge intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.MinX() <= other.MaxX() &&
		other.MinX() <= r.MaxX() &&
		r.MinY() <= other.MaxY() &&
		other.MinY() <= r.MaxY()
}

func (r Rect) String() string {
	return r.Origin.String() + "+[" +
		strconv.FormatFloat(r.Size.Width, 'f', -1, 64) + "x" +
		strconv.FormatFloat(r.Size.Height, 'f', -1, 64) + "]"
}

// rectFromEdges keeps adjacent quadrants glued to the exact same split
// values, the extents being derived from the edges rather than the reverse.
func rectFromEdges(minX, minY, maxX, maxY float64) Rect {
	return Rect{
		Origin: Coordinate{X: minX, Y: minY},
		Size:   Size{Width: maxX - minX, Height: maxY - minY},
	}
}
