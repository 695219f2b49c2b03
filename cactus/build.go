package cactus

import (
	"sort"

	"github.com/ostreida/pinchnet/pinch"
)

// Build contracts the pinch graph into its cactus graph and returns it
// together with the three-edge-connected classes (as groups of pinch
// vertices). Grey adjacency components become multigraph nodes, blocks
// become multigraph edges, and every three-edge-connected class of that
// multigraph contracts to one cactus vertex. Cactus vertex 0 contains the
// pinch source.
func Build(pg *pinch.Graph) (*Graph, [][]*pinch.Vertex, error) {
	pinchVertices := pg.Vertices()
	if len(pinchVertices) == 0 {
		return nil, nil, ErrEmptyGraph
	}

	// 1. Grey adjacency components, source's component first.
	comp := make(map[*pinch.Vertex]int)
	var compVertices [][]*pinch.Vertex
	for _, start := range pinchVertices {
		if _, seen := comp[start]; seen {
			continue
		}
		id := len(compVertices)
		group := []*pinch.Vertex{start}
		comp[start] = id
		for i := 0; i < len(group); i++ {
			for _, nb := range pg.GreyNeighbours(group[i]) {
				if _, seen := comp[nb]; !seen {
					comp[nb] = id
					group = append(group, nb)
				}
			}
		}
		compVertices = append(compVertices, group)
	}

	// 2. Blocks: parallel black edges between one vertex pair, oriented from
	// the smaller vertex id.
	type blockKey struct{ u, w int }
	blocks := make(map[blockKey][]*pinch.Edge)
	for ci := 0; ci < pg.ContigNumber(); ci++ {
		for _, e := range pg.ContigEdges(ci) {
			u, w := e.From(), e.To()
			if u.ID() <= w.ID() {
				blocks[blockKey{u.ID(), w.ID()}] = append(blocks[blockKey{u.ID(), w.ID()}], e)
			} else {
				blocks[blockKey{w.ID(), u.ID()}] = append(blocks[blockKey{w.ID(), u.ID()}], e.Twin())
			}
		}
	}
	keys := make([]blockKey, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].u != keys[j].u {
			return keys[i].u < keys[j].u
		}
		return keys[i].w < keys[j].w
	})

	// 3. The block multigraph over adjacency components.
	type hEdge struct{ a, b int }
	hEdges := make([]hEdge, 0, len(keys))
	for _, k := range keys {
		hEdges = append(hEdges, hEdge{comp[pg.Vertex(k.u)], comp[pg.Vertex(k.w)]})
	}
	nodeCount := len(compVertices)

	// 4. Three-edge-connected classes by partition refinement over every
	// one- and two-edge cut set.
	parts := func(skip1, skip2 int) []int {
		adj := make([][]int, nodeCount)
		for i, he := range hEdges {
			if i == skip1 || i == skip2 || he.a == he.b {
				continue
			}
			adj[he.a] = append(adj[he.a], he.b)
			adj[he.b] = append(adj[he.b], he.a)
		}
		part := make([]int, nodeCount)
		for i := range part {
			part[i] = -1
		}
		next := 0
		for s := 0; s < nodeCount; s++ {
			if part[s] >= 0 {
				continue
			}
			queue := []int{s}
			part[s] = next
			for len(queue) > 0 {
				v := queue[0]
				queue = queue[1:]
				for _, nb := range adj[v] {
					if part[nb] < 0 {
						part[nb] = next
						queue = append(queue, nb)
					}
				}
			}
			next++
		}
		return part
	}
	refine := func(class, part []int) []int {
		type key struct{ c, p int }
		renumber := make(map[key]int)
		out := make([]int, len(class))
		for i := range class {
			k := key{class[i], part[i]}
			id, ok := renumber[k]
			if !ok {
				id = len(renumber)
				renumber[k] = id
			}
			out[i] = id
		}
		return out
	}
	class := parts(-1, -1)
	for i := range hEdges {
		class = refine(class, parts(i, -1))
	}
	for i := range hEdges {
		for j := i + 1; j < len(hEdges); j++ {
			class = refine(class, parts(i, j))
		}
	}

	// 5. Cactus vertices, the source's class first, the rest in order of
	// their smallest member node.
	classOf := make(map[int]*Vertex)
	g := &Graph{}
	order := make([]int, 0, nodeCount)
	order = append(order, class[0])
	seenClass := map[int]bool{class[0]: true}
	for node := 1; node < nodeCount; node++ {
		if !seenClass[class[node]] {
			seenClass[class[node]] = true
			order = append(order, class[node])
		}
	}
	nodeToVertex := make([]*Vertex, nodeCount)
	for _, c := range order {
		classOf[c] = g.newVertex()
	}
	for node := 0; node < nodeCount; node++ {
		v := classOf[class[node]]
		nodeToVertex[node] = v
		v.pinchVertices = append(v.pinchVertices, compVertices[node]...)
	}
	for _, v := range g.vertices {
		sort.Slice(v.pinchVertices, func(i, j int) bool {
			return v.pinchVertices[i].ID() < v.pinchVertices[j].ID()
		})
	}

	// 6. Cactus edges, one per block, in block order.
	for bi, k := range keys {
		he := hEdges[bi]
		g.addEdgePair(nodeToVertex[he.a], nodeToVertex[he.b], blocks[k], false)
	}

	// The three-edge classes of pinch vertices, for the caller's records.
	classes := make([][]*pinch.Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		classes = append(classes, v.pinchVertices)
	}
	return g, classes, nil
}

// CirculariseStems attaches a phantom parallel edge to every bridge of the
// cactus graph so each bridge closes into a length-2 cycle and every
// bi-connected component becomes a cycle.
func (g *Graph) CirculariseStems() {
	for _, e := range g.bridges() {
		g.addEdgePair(e.from, e.to, nil, true)
	}
}

// bridges returns the canonical orientations of the bridge edges, found by
// an iterative low-link depth-first search over the multigraph.
func (g *Graph) bridges() []*Edge {
	n := len(g.vertices)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	var out []*Edge
	timer := 0

	type frame struct {
		v       *Vertex
		entry   *Edge // orientation used to enter v
		nextIdx int
	}
	for _, root := range g.vertices {
		if disc[root.id] >= 0 {
			continue
		}
		stack := []frame{{v: root}}
		disc[root.id] = timer
		low[root.id] = timer
		timer++
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.nextIdx < len(f.v.edges) {
				e := f.v.edges[f.nextIdx]
				f.nextIdx++
				if e.to == f.v && e.from == f.v {
					continue // self loop
				}
				if f.entry != nil && e == f.entry.twin {
					continue // do not re-use the entry orientation
				}
				w := e.to
				if disc[w.id] < 0 {
					disc[w.id] = timer
					low[w.id] = timer
					timer++
					stack = append(stack, frame{v: w, entry: e})
				} else if low[f.v.id] > disc[w.id] {
					low[f.v.id] = disc[w.id]
				}
				continue
			}
			// Post-order: propagate low and test the entry edge.
			stack = stack[:len(stack)-1]
			if f.entry != nil {
				parent := f.entry.from
				if low[parent.id] > low[f.v.id] {
					low[parent.id] = low[f.v.id]
				}
				if low[f.v.id] > disc[parent.id] {
					out = append(out, f.entry.Canonical())
				}
			}
		}
	}
	return out
}
