package cactus

import (
	"github.com/ostreida/pinchnet/flower"
	"github.com/ostreida/pinchnet/pinch"
)

// IsStubOrCap reports whether the cactus edge carries a cap or stub block.
// Stem edges carry nothing and report false.
func (e *Edge) IsStubOrCap(pg *pinch.Graph) bool {
	pe := e.FirstPinchEdge()
	return pe != nil && pg.IsStubOrCap(pe)
}

// TreeCoverage scores the block behind the cactus edge against the net's
// event tree; stem edges score zero.
func (e *Edge) TreeCoverage(pg *pinch.Graph, net *flower.Net) float64 {
	pe := e.FirstPinchEdge()
	if pe == nil {
		return 0
	}
	return pg.TreeCoverage(pe.From(), net)
}

// FilterBlocksByTreeCoverageAndLength selects the block subset to
// materialise. Per candidate chain (bi-connected component), a block passes
// when its tree coverage reaches minTreeCoverage and its length reaches
// minBlockLength; the chain's passing blocks are kept only when their
// combined length reaches minChainLength. Stub, cap and stem edges never
// participate. The chosen edges are returned in chain order.
func FilterBlocksByTreeCoverageAndLength(
	biConnectedComponents [][]*Edge,
	net *flower.Net,
	pg *pinch.Graph,
	minTreeCoverage float64,
	minBlockLength, minChainLength int,
) []*Edge {
	var chosen []*Edge
	for _, component := range biConnectedComponents {
		var passing []*Edge
		chainLength := 0
		for _, e := range component {
			if e.IsStem() || e.IsStubOrCap(pg) {
				continue
			}
			if e.TreeCoverage(pg, net) >= minTreeCoverage && e.Length() >= minBlockLength {
				passing = append(passing, e)
				chainLength += e.Length()
			}
		}
		if chainLength >= minChainLength {
			chosen = append(chosen, passing...)
		}
	}
	return chosen
}
