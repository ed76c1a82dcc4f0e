package models

// JourneyStep is one recorded session's ordered path through a funnel.
type JourneyStep struct {
	SessionID string   `json:"sessionId"`
	UserID    string   `json:"userId"`
	Steps     []string `json:"steps"`
}

// SankeyNode is a step in the journey graph. Depth is the first-seen
// ordinal plus one; the synthetic Start node sits at depth 0.
type SankeyNode struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Depth int    `json:"depth"`
}

// SankeyLink is a weighted transition between two node indices.
type SankeyLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

type JourneyGraph struct {
	Nodes []SankeyNode `json:"nodes"`
	Links []SankeyLink `json:"links"`
}
