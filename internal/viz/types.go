// Package viz renders knowledge graph snapshots as Cytoscape.js pages.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a graph vertex flattened for the browser.
type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"` // paper, author, topic, keyword, citation

	// Display
	Label string  `json:"label"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`

	// Paper-specific fields (for tooltips)
	Authors   string `json:"authors,omitempty"` // Formatted string "A. Name, B. Name"
	Year      int    `json:"year,omitempty"`
	Category  string `json:"category,omitempty"`
	Citations int    `json:"citations,omitempty"`
	Summary   string `json:"summary,omitempty"`

	// Entity nodes: number of papers referencing them
	PaperCount int `json:"paperCount,omitempty"`
}

// Edge is a graph edge flattened for the browser.
type Edge struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
	Label  string  `json:"label,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
