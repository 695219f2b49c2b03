package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/ostreida/pinchnet/align"
	"github.com/ostreida/pinchnet/cactus"
	"github.com/ostreida/pinchnet/flower"
	"github.com/ostreida/pinchnet/pinch"
)

var logger = slog.Default()

// SetLogger redirects the pipeline's structured log output.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Run executes the core pipeline on the net: alignUndoLoops pinch/prune
// passes over the alignment stream, stub-to-sink linking, cactus
// construction, block choice and net materialisation. It returns the root of
// the new net hierarchy, registered with the net's store.
func Run(net *flower.Net, params Params, stream AlignmentStream) (*flower.Net, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	g, err := pinch.FromFlower(net)
	if err != nil {
		return nil, err
	}
	if err = g.Check(); err != nil {
		return nil, err
	}
	logger.Info("constructed pinch graph", "vertices", g.VertexNumber(), "edges", g.EdgeNumber())
	if err = writeDebugDOT(params, "pinchGraph1.dot", g); err != nil {
		return nil, err
	}

	trim := params.Trim
	extensionSteps := params.ExtensionSteps
	anchorCoverage := params.MinimumTreeCoverageForAlignUndoBlock

	for pass := 0; pass < params.AlignUndoLoops; pass++ {
		// 1. The adjacency-component tag map: one shared component on the
		// first pass, anchor-induced recursive components afterwards.
		tags := make(map[*pinch.Vertex]int)
		if pass == 0 {
			for _, v := range g.Vertices() {
				tags[v] = 0
			}
		} else {
			anchors := g.AnchorEdges(anchorCoverage, net)
			for i, component := range g.RecursiveComponents(anchors) {
				for _, v := range component {
					tags[v] = i
				}
			}
		}
		if len(tags) != g.VertexNumber() {
			return nil, fmt.Errorf("%w: %d tags for %d vertices", pinch.ErrInvariant, len(tags), g.VertexNumber())
		}

		// 2. Stream the alignments through the filter into the graph.
		if err = stream.Reset(); err != nil {
			return nil, err
		}
		applied := 0
		for {
			pa, err := stream.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			if err = applyAlignment(g, pa, trim, params.AlignRepeats, tags); err != nil {
				return nil, err
			}
			applied++
		}
		logger.Info("pinched alignments", "pass", pass, "alignments", applied, "trim", trim)
		if err = writeDebugDOT(params, fmt.Sprintf("pinchGraph2_pass%d.dot", pass), g); err != nil {
			return nil, err
		}

		// 3. Over-alignment pruning: degree cap with extension, then the
		// global coverage floor, then trivial component cleanup.
		g.RemoveOverAlignedEdges(0, params.MaxEdgeDegree, extensionSteps, net)
		g.RemoveOverAlignedEdges(params.MinimumTreeCoverage, math.MaxInt, 0, net)
		g.RemoveTrivialGreyComponents(tags)
		if err = g.Check(); err != nil {
			return nil, err
		}
		if err = g.CheckDegree(params.MaxEdgeDegree); err != nil {
			return nil, err
		}
		logger.Info("pruned over-aligned edges", "pass", pass,
			"vertices", g.VertexNumber(), "edges", g.EdgeNumber())
		if err = writeDebugDOT(params, fmt.Sprintf("pinchGraph3_pass%d.dot", pass), g); err != nil {
			return nil, err
		}

		// 4. Relax the pass parameters.
		trim = floorInt(trim - params.TrimReduction)
		extensionSteps = floorInt(extensionSteps - params.ExtensionStepsReduction)
		anchorCoverage = floorFloat(anchorCoverage - params.MinimumTreeCoverageForAlignUndoBlockReduction)
	}

	// 5. Root the graph and contract it to a cactus.
	g.LinkStubComponentsToSink()
	if err = g.Check(); err != nil {
		return nil, err
	}
	if err = writeDebugDOT(params, "pinchGraph4.dot", g); err != nil {
		return nil, err
	}

	cg, _, err := cactus.Build(g)
	if err != nil {
		return nil, err
	}
	if err = writeCactusDOT(params, "cactusGraph1.dot", cg); err != nil {
		return nil, err
	}
	cg.CirculariseStems()
	if err = cg.CheckOnly2EdgeConnected(); err != nil {
		return nil, err
	}
	if err = writeCactusDOT(params, "cactusGraph2.dot", cg); err != nil {
		return nil, err
	}
	components, err := cg.SortedBiConnectedComponents()
	if err != nil {
		return nil, err
	}
	logger.Info("built cactus graph", "vertices", cg.VertexNumber(), "chains", len(components))

	// 6. Choose the block subset and materialise the hierarchy.
	chosen := cactus.FilterBlocksByTreeCoverageAndLength(components, net, g,
		params.MinimumTreeCoverageForBlocks, params.MinimumBlockLength, params.MinimumChainLength)
	logger.Info("chose blocks", "chosen", len(chosen))

	root, err := buildNet(net, cg, g, components, chosen)
	if err != nil {
		return nil, err
	}
	reconstructFacesRecursively(root, map[string]bool{})
	return root, nil
}

// applyAlignment pinches every matched pair of the alignment through the
// trim/repeat merge filter. Filtered pairs are discarded silently; filter
// failures caused by malformed coordinates abort the run.
func applyAlignment(g *pinch.Graph, pa *align.PairwiseAlignment, trim int, alignRepeats bool, tags map[*pinch.Vertex]int) error {
	var filterErr error
	filter := pinch.MergeFilterFunc(func(a, b *pinch.Segment) bool {
		if a.Length() <= 2*trim {
			return false
		}
		a.Start += trim
		a.End -= trim
		b.Start += trim
		b.End -= trim
		if alignRepeats {
			return true
		}
		repeat, err := containsRepeats(g, *a)
		if err != nil {
			filterErr = err
			return false
		}
		if !repeat {
			if repeat, err = containsRepeats(g, *b); err != nil {
				filterErr = err
				return false
			}
		}
		return !repeat
	})

	for _, mp := range pa.MatchedPairs() {
		a, err := toPinchSegment(g, pa.Contig1, mp.Start1, mp.Strand1, mp.Length)
		if err != nil {
			return err
		}
		b, err := toPinchSegment(g, pa.Contig2, mp.Start2, mp.Strand2, mp.Length)
		if err != nil {
			return err
		}
		if err = g.MergeFiltered(a, b, filter, tags); err != nil {
			return err
		}
		if filterErr != nil {
			return filterErr
		}
	}
	return nil
}

// toPinchSegment maps a matched stretch onto the thread contig of its
// sequence: 0-based sequence positions become the signed 1-based pinch
// coordinates of the sequence contig.
func toPinchSegment(g *pinch.Graph, name string, start int, forward bool, length int) (pinch.Segment, error) {
	contig, ok := g.SequenceContig(name)
	if !ok {
		return pinch.Segment{}, fmt.Errorf("%w: %q", ErrUnknownSequence, name)
	}
	st := g.Contig(contig).Seq.Start()
	if forward {
		return pinch.Segment{Contig: contig, Start: st + start + 1, End: st + start + length}, nil
	}
	// A reverse stretch descends from its start: it covers the forward
	// bases [start-length, start-1].
	return pinch.Segment{Contig: contig, Start: -(st + start), End: -(st + start - length + 1)}, nil
}

// containsRepeats reports whether the bases under the segment carry
// soft-masked or N characters.
func containsRepeats(g *pinch.Graph, s pinch.Segment) (bool, error) {
	seq := g.Contig(s.Contig).Seq
	if seq == nil {
		return false, nil
	}
	fwd := s
	if !fwd.IsPositive() {
		fwd = fwd.Reverse()
	}
	bases, err := seq.Slice(fwd.Start-1, fwd.Length(), true)
	if err != nil {
		return false, err
	}
	return flower.ContainsRepeatBases(bases), nil
}

// writeDebugDOT emits one pinch graph DOT snapshot when debug output is on.
func writeDebugDOT(params Params, name string, g *pinch.Graph) error {
	if !params.WriteDebugFiles {
		return nil
	}
	f, err := os.Create(filepath.Join(params.DebugDir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return g.WriteDOT(f)
}

// writeCactusDOT emits one cactus graph DOT snapshot when debug output is on.
func writeCactusDOT(params Params, name string, cg *cactus.Graph) error {
	if !params.WriteDebugFiles {
		return nil
	}
	f, err := os.Create(filepath.Join(params.DebugDir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return cg.WriteDOT(f)
}

// reconstructFacesRecursively rebuilds faces for the net and every nested
// net below it.
func reconstructFacesRecursively(n *flower.Net, seen map[string]bool) {
	if n == nil || seen[n.Name()] {
		return
	}
	seen[n.Name()] = true
	n.ReconstructFaces()
	for _, g := range n.Groups() {
		reconstructFacesRecursively(g.NestedNet(), seen)
	}
}

func floorInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func floorFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
