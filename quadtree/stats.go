package quadtree

// Stats summarizes the shape of a tree.
type Stats struct {
	Capacity   int `json:"capacity"`
	Points     int `json:"points"`
	Nodes      int `json:"nodes"`
	Leaves     int `json:"leaves"`
	MaxDepth   int `json:"max_depth"`
	MaxLeafLen int `json:"max_leaf_len"`
}

// Stats walks the tree under n and reports its counters.
func (n *Node) Stats() Stats {
	s := Stats{Capacity: n.capacity}

	n.Walk(func(c *Node) bool {
		s.Nodes++

		if depth := c.depth - n.depth; depth > s.MaxDepth {
			s.MaxDepth = depth
		}

		if c.IsLeaf() {
			s.Leaves++
			s.Points += len(c.points)
			if len(c.points) > s.MaxLeafLen {
				s.MaxLeafLen = len(c.points)
			}
		}
		return true
	})

	return s
}
