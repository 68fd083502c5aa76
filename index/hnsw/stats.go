package hnsw

import (
	"fmt"
	"strings"
)

// LevelStats describes one layer of the graph.
type LevelStats struct {
	Nodes       int `json:"nodes"`
	Connections int `json:"connections"`
}

// Stats describes the shape of a built graph.
type Stats struct {
	Options  Options      `json:"options"`
	Nodes    int          `json:"nodes"`
	MaxLevel int          `json:"max_level"`
	EntryID  uint32       `json:"entry_id"`
	Levels   []LevelStats `json:"levels"`
}

// Stats returns statistics about the HNSW graph
func (h *HNSW) Stats() Stats {
	s := Stats{
		Options:  h.opts,
		Nodes:    len(h.nodes),
		MaxLevel: h.maxLevel,
		EntryID:  h.ep,
		Levels:   make([]LevelStats, h.maxLevel+1),
	}

	for _, n := range h.nodes {
		for l := n.level; l >= 0; l-- {
			s.Levels[l].Nodes++
			s.Levels[l].Connections += len(n.connections[l])
		}
	}

	return s
}

// String renders the stats in a human readable block.
func (s Stats) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "M = %d, EFConstruction = %d, EFSearch = %d, Heuristic = %v\n",
		s.Options.M, s.Options.EFConstruction, s.Options.EFSearch, s.Options.Heuristic)
	fmt.Fprintf(&b, "nodes = %d, maxLevel = %d, ep = %d\n", s.Nodes, s.MaxLevel, s.EntryID)

	for l, ls := range s.Levels {
		avg := ls.Connections / max(1, ls.Nodes)
		fmt.Fprintf(&b, "level %d: nodes = %d, connections = %d, avg = %d\n", l, ls.Nodes, ls.Connections, avg)
	}

	return b.String()
}
