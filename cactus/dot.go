package cactus

import (
	"fmt"
	"io"
)

// WriteDOT emits a Graphviz snapshot of the cactus graph: block edges solid
// and labelled with their degree and length, stem edges dotted.
func (g *Graph) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "graph cactus {"); err != nil {
		return err
	}
	for _, v := range g.vertices {
		if _, err := fmt.Fprintf(w, "\tc%d [label=\"c%d (%d)\"];\n", v.id, v.id, len(v.pinchVertices)); err != nil {
			return err
		}
	}
	for _, e := range g.edges {
		style := "solid"
		label := fmt.Sprintf("%dx%d", len(e.pinchEdges), e.Length())
		if e.stem {
			style = "dotted"
			label = "stem"
		}
		if _, err := fmt.Fprintf(w, "\tc%d -- c%d [style=%s,label=\"%s\"];\n",
			e.from.id, e.to.id, style, label); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
