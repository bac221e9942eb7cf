package graph

import (
	"sort"

	"github.com/raphaelgruber/circlemap/internal/models"
)

// lurkerMaxMessages is the message count below which a mentioned member is a lurker.
const lurkerMaxMessages = 5

// Graph indexes an edge list for order-independent lookup.
type Graph struct {
	edges []models.RelationshipEdge
	index map[pair]int
}

// New wraps edges. The slice is kept as is.
func New(edges []models.RelationshipEdge) *Graph {
	g := &Graph{edges: edges, index: make(map[pair]int, len(edges))}
	for i, e := range edges {
		a, b := order(e.PersonA, e.PersonB)
		g.index[pair{a, b}] = i
	}
	return g
}

// Edges returns all edges, strongest first.
func (g *Graph) Edges() []models.RelationshipEdge {
	return g.edges
}

// Edge returns the edge between a and b in either order.
func (g *Graph) Edge(a, b string) (models.RelationshipEdge, bool) {
	a, b = order(a, b)
	i, ok := g.index[pair{a, b}]
	if !ok {
		return models.RelationshipEdge{}, false
	}
	return g.edges[i], true
}

// Neighbors returns the edges touching name, strongest first.
func (g *Graph) Neighbors(name string) []models.RelationshipEdge {
	out := []models.RelationshipEdge{}
	for _, e := range g.edges {
		if e.Involves(name) {
			out = append(out, e)
		}
	}
	return out
}

// Analyze ranks members by how they sit in the mention graph.
func Analyze(profiles []models.Profile) models.NetworkRoles {
	roles := models.NetworkRoles{
		Hubs:       []models.RoleEntry{},
		Connectors: []models.RoleEntry{},
		Lurkers:    []models.RoleEntry{},
	}

	for _, p := range profiles {
		if n := len(p.MentionedBy); n > 0 {
			roles.Hubs = append(roles.Hubs, models.RoleEntry{Name: p.DisplayName, Count: n})
			if p.MessageCount < lurkerMaxMessages {
				roles.Lurkers = append(roles.Lurkers, models.RoleEntry{Name: p.DisplayName, Count: n})
			}
		}
		if n := len(p.Mentions); n > 0 {
			roles.Connectors = append(roles.Connectors, models.RoleEntry{Name: p.DisplayName, Count: n})
		}
	}

	byCount(roles.Hubs)
	byCount(roles.Connectors)
	byCount(roles.Lurkers)
	return roles
}

func byCount(entries []models.RoleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
}
