package main

// Node is a single grid cell. Search bookkeeping is kept per query, not here.
type Node struct {
	Position   Vec3 `json:"position"`
	Col        int  `json:"col"`
	Row        int  `json:"row"`
	IsObstacle bool `json:"isObstacle"`

	index int // Flat index into the owning grid (col*numRows + row)
}

func newNode(position Vec3, col, row, index int) *Node {
	return &Node{
		Position: position,
		Col:      col,
		Row:      row,
		index:    index,
	}
}

// MarkAsObstacle flags the cell as blocked. Only called during grid construction.
func (n *Node) MarkAsObstacle() {
	n.IsObstacle = true
}
