package quadtree

import (
	"fmt"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	ErrTypeInvalidCapacity = "quadtree_invalid_capacity"
	ErrTypeInvalidUniverse = "quadtree_invalid_universe"

	// MaxDepth is the depth at which leaves stop subdividing. It bounds
	// recursion when more than capacity points share a coordinate.
	MaxDepth = 32
)

// Quadrant identifies one of the four children of an internal node, named
// relative to the rect origin (see Rect). Children are always visited in this
// order, by Insert as well as by Query.
type Quadrant int

const (
	NorthEast Quadrant = iota
	NorthWest
	SouthEast
	SouthWest

	quadrantCount = 4
)

func (q Quadrant) String() string {
	switch q {
	case NorthEast:
		return "ne"
	case NorthWest:
		return "nw"
	case SouthEast:
		return "se"
	case SouthWest:
		return "sw"
	default:
		return fmt.Sprintf("quadrant(%d)", int(q))
	}
}

// Point is anything that can be placed in the index.
type Point interface {
	Coordinate() Coordinate
}

// Node is a rectangular region of the index. A node is either a leaf that
// stores its points directly or an internal node that owns exactly four
// children and no points of its own.
//
// The root node returned by New is the index. Nodes are not safe for
// concurrent use: callers that share a tree across goroutines must serialize
// Insert against Query.
type Node struct {
	bounds   bounds
	depth    int
	capacity int

	points   []Point
	children *[quadrantCount]*Node
}

// New returns an empty index spanning universe. Each leaf holds at most
// capacity points before it splits into four quadrants.
func New(universe Rect, capacity int) (*Node, error) {
	if capacity <= 0 {
		return nil, errors.New("capacity must be greater than zero").
			WithType(ErrTypeInvalidCapacity).
			WithTag("capacity", capacity)
	}

	if universe.IsEmpty() ||
		math.IsInf(universe.MaxX(), 0) ||
		math.IsInf(universe.MaxY(), 0) ||
		math.IsNaN(universe.MinX()) ||
		math.IsNaN(universe.MinY()) {
		return nil, errors.New("universe must be a finite rectangle with a positive area").
			WithType(ErrTypeInvalidUniverse).
			WithTag("universe", universe.String())
	}

	return &Node{
		bounds:   newUniverseBounds(universe),
		capacity: capacity,
	}, nil
}

// Insert adds p to the node and returns true when p lies inside the node
// rectangle. It returns false without modifying the tree otherwise.
func (n *Node) Insert(p Point) bool {
	if n.capacity <= 0 {
		panic("quadtree: insert on a node with a non-positive capacity, use New to create an index")
	}

	if !n.bounds.contains(p.Coordinate()) {
		return false
	}

	if n.children != nil {
		return n.insertIntoChildren(p)
	}

	n.points = append(n.points, p)
	if len(n.points) > n.capacity && n.depth < MaxDepth {
		n.subdivide()
	}
	return true
}

// InsertAll inserts points one by one and returns how many were accepted.
func (n *Node) InsertAll(points ...Point) int {
	var accepted int
	for _, p := range points {
		if n.Insert(p) {
			accepted++
		}
	}
	return accepted
}

func (n *Node) insertIntoChildren(p Point) bool {
	for _, c := range n.children {
		if c.Insert(p) {
			return true
		}
	}
	return false
}

func (n *Node) subdivide() {
	quads := n.bounds.split()

	var children [quadrantCount]*Node
	for i, b := range quads {
		children[i] = &Node{
			bounds:   b,
			depth:    n.depth + 1,
			capacity: n.capacity,
		}
	}
	n.children = &children

	points := n.points
	n.points = nil

	for _, p := range points {
		if !n.insertIntoChildren(p) {
			panic(fmt.Sprintf("quadtree: point %s in %s was not claimed by any quadrant",
				p.Coordinate(), n.Rect()))
		}
	}
}

// Query returns every point under the node that lies inside the closed
// rectangle r. Results are ordered by a depth-first NE, NW, SE, SW traversal,
// leaf points keeping their insertion order.
func (n *Node) Query(r Rect) []Point {
	return n.query(r, nil)
}

func (n *Node) query(r Rect, result []Point) []Point {
	rect := n.Rect()
	if !r.Intersects(rect) {
		return result
	}

	if r.ContainsRect(rect) {
		return n.appendAll(result)
	}

	if n.children != nil {
		for _, c := range n.children {
			result = c.query(r, result)
		}
		return result
	}

	for _, p := range n.points {
		if r.Contains(p.Coordinate()) {
			result = append(result, p)
		}
	}
	return result
}

func (n *Node) appendAll(result []Point) []Point {
	if n.children == nil {
		return append(result, n.points...)
	}

	for _, c := range n.children {
		result = c.appendAll(result)
	}
	return result
}

// Rect returns the rectangle covered by the node.
func (n *Node) Rect() Rect {
	return n.bounds.rect()
}

// Capacity returns the maximum number of points a leaf holds before splitting.
func (n *Node) Capacity() int {
	return n.capacity
}

// Depth returns the distance between the node and the root.
func (n *Node) Depth() int {
	return n.depth
}

// IsLeaf reports whether the node stores its points directly.
func (n *Node) IsLeaf() bool {
	return n.children == nil
}

// Child returns the child for the given quadrant, or nil on a leaf.
func (n *Node) Child(q Quadrant) *Node {
	if n.children == nil || q < 0 || q >= quadrantCount {
		return nil
	}
	return n.children[q]
}

// Points returns the points stored directly by the node. It is always empty
// for an internal node.
func (n *Node) Points() []Point {
	return n.points
}

// Len returns the number of points under the node.
func (n *Node) Len() int {
	if n.children == nil {
		return len(n.points)
	}

	var count int
	for _, c := range n.children {
		count += c.Len()
	}
	return count
}

// Walk visits the node and its descendants depth first in NE, NW, SE, SW
// order. Returning false from visit skips the children of the visited node.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) || n.children == nil {
		return
	}
	for _, c := range n.children {
		c.Walk(visit)
	}
}
