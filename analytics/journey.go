// Package analytics holds the derivations behind the dashboard: the funnel
// journey graph, the merged account health table and the session insight
// pipeline.
package analytics

import "github.com/MohamedH1998/onbored-sub001/models"

// StartNode is the synthetic entry node every journey graph begins with.
const StartNode = "Start"

type transition struct {
	from, to string
}

// BuildJourneyGraph folds per-session step sequences into a Sankey graph.
// Consecutive repeats of a step count as traffic but never as an edge. A node
// is an entry point iff no recorded transition targets it; each entry node
// receives a Start link weighted by its traffic.
func BuildJourneyGraph(journeys []models.JourneyStep) models.JourneyGraph {
	var order []string
	traffic := make(map[string]int)
	var pairs []transition
	transitions := make(map[transition]int)

	for _, j := range journeys {
		for i, step := range j.Steps {
			if _, seen := traffic[step]; !seen {
				order = append(order, step)
			}
			traffic[step]++

			if i == 0 || j.Steps[i-1] == step {
				continue
			}
			t := transition{from: j.Steps[i-1], to: step}
			if _, seen := transitions[t]; !seen {
				pairs = append(pairs, t)
			}
			transitions[t]++
		}
	}

	targeted := make(map[string]bool, len(pairs))
	for _, t := range pairs {
		targeted[t.to] = true
	}

	index := make(map[string]int, len(order))
	nodes := make([]models.SankeyNode, 0, len(order)+1)
	nodes = append(nodes, models.SankeyNode{Name: StartNode, Depth: 0})
	for i, name := range order {
		index[name] = i + 1
		nodes = append(nodes, models.SankeyNode{Name: name, Value: traffic[name], Depth: i + 1})
	}

	links := make([]models.SankeyLink, 0, len(pairs)+len(order))
	for _, name := range order {
		if targeted[name] {
			continue
		}
		links = append(links, models.SankeyLink{Source: 0, Target: index[name], Value: traffic[name]})
		nodes[0].Value += traffic[name]
	}
	for _, t := range pairs {
		links = append(links, models.SankeyLink{
			Source: index[t.from],
			Target: index[t.to],
			Value:  transitions[t],
		})
	}

	return models.JourneyGraph{Nodes: nodes, Links: links}
}
