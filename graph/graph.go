package graph

// Graph holds the forward and reverse dependency edge sets between
// module ids, built incrementally as modules require() each other.
type Graph struct {
	// forward maps parent -> set of children it requires.
	forward map[string]map[string]struct{}

	// reverse maps child -> set of parents that require it.
	reverse map[string]map[string]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}
}

// Record adds a dependency edge from parent to child. Self-edges are
// ignored and duplicate calls are idempotent.
func (g *Graph) Record(parent, child string) {
	if parent == child || parent == "" || child == "" {
		return
	}
	addEdge(g.forward, parent, child)
	addEdge(g.reverse, child, parent)
}

func addEdge(m map[string]map[string]struct{}, from, to string) {
	set, ok := m[from]
	if !ok {
		set = make(map[string]struct{})
		m[from] = set
	}
	set[to] = struct{}{}
}

// Dependencies returns the ids parent directly requires.
func (g *Graph) Dependencies(parent string) []string {
	return keys(g.forward[parent])
}

// Dependents returns the ids that directly require child.
func (g *Graph) Dependents(child string) []string {
	return keys(g.reverse[child])
}

func keys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// ReverseClosure returns every id transitively reachable from the
// seeds via reverse edges, seeds included, each visited at most once.
// Ids for which skip returns true are excluded from both seeding and
// traversal; skip may be nil.
func (g *Graph) ReverseClosure(seeds []string, skip func(id string) bool) []string {
	visited := make(map[string]struct{}, len(seeds))
	var order []string

	var walk func(id string)
	walk = func(id string) {
		if skip != nil && skip(id) {
			return
		}
		if _, seen := visited[id]; seen {
			return
		}
		visited[id] = struct{}{}
		order = append(order, id)
		for parent := range g.reverse[id] {
			walk(parent)
		}
	}

	for _, s := range seeds {
		walk(s)
	}
	return order
}

// Remove drops a node and every edge touching it, pruning edge sets
// that become empty.
func (g *Graph) Remove(id string) {
	for child := range g.forward[id] {
		dropEdge(g.reverse, child, id)
	}
	delete(g.forward, id)

	for parent := range g.reverse[id] {
		dropEdge(g.forward, parent, id)
	}
	delete(g.reverse, id)
}

func dropEdge(m map[string]map[string]struct{}, from, to string) {
	set, ok := m[from]
	if !ok {
		return
	}
	delete(set, to)
	if len(set) == 0 {
		delete(m, from)
	}
}

// Len returns the number of nodes with at least one forward edge.
func (g *Graph) Len() int {
	return len(g.forward)
}

// Reset drops every edge.
func (g *Graph) Reset() {
	g.forward = make(map[string]map[string]struct{})
	g.reverse = make(map[string]map[string]struct{})
}
