package pipeline

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for parameter handling.
var (
	// ErrBadParams indicates an invalid parameter record.
	ErrBadParams = errors.New("pipeline: invalid parameters")

	// ErrUnknownSequence indicates an alignment referencing a sequence the
	// net does not carry.
	ErrUnknownSequence = errors.New("pipeline: alignment references unknown sequence")
)

// Params are the knobs of the pinch/undo loop and the block chooser. The
// zero value is not usable; start from DefaultParams.
type Params struct {
	// AlignUndoLoops is the number of full pinch/prune passes.
	AlignUndoLoops int `yaml:"alignUndoLoops"`

	// Trim is the number of bases removed from each end of each match
	// segment; reduced by TrimReduction after each pass, floored at zero.
	Trim          int `yaml:"trim"`
	TrimReduction int `yaml:"trimReduction"`

	// ExtensionSteps is the grey-hop radius of over-alignment removal;
	// reduced by ExtensionStepsReduction per pass, floored at zero.
	ExtensionSteps          int `yaml:"extensionSteps"`
	ExtensionStepsReduction int `yaml:"extensionStepsReduction"`

	// MaxEdgeDegree caps block degree after each pass.
	MaxEdgeDegree int `yaml:"maxEdgeDegree"`

	// MinimumTreeCoverage is the per-block coverage floor applied globally
	// after the degree cap.
	MinimumTreeCoverage float64 `yaml:"minimumTreeCoverage"`

	// MinimumTreeCoverageForAlignUndoBlock is the coverage above which a
	// block anchors the adjacency-component partition of the next pass;
	// reduced per pass, floored at zero.
	MinimumTreeCoverageForAlignUndoBlock          float64 `yaml:"minimumTreeCoverageForAlignUndoBlock"`
	MinimumTreeCoverageForAlignUndoBlockReduction float64 `yaml:"minimumTreeCoverageForAlignUndoBlockReduction"`

	// Block-selection thresholds.
	MinimumTreeCoverageForBlocks float64 `yaml:"minimumTreeCoverageForBlocks"`
	MinimumBlockLength           int     `yaml:"minimumBlockLength"`
	MinimumChainLength           int     `yaml:"minimumChainLength"`

	// AlignRepeats admits matches containing soft-masked or N bases.
	AlignRepeats bool `yaml:"alignRepeats"`

	// WriteDebugFiles emits DOT snapshots into DebugDir at each stage.
	WriteDebugFiles bool   `yaml:"writeDebugFiles"`
	DebugDir        string `yaml:"debugDir"`
}

// DefaultParams returns the canonical parameter set.
func DefaultParams() Params {
	return Params{
		AlignUndoLoops:                       5,
		Trim:                                 3,
		TrimReduction:                        1,
		ExtensionSteps:                       3,
		ExtensionStepsReduction:              1,
		MaxEdgeDegree:                        50,
		MinimumTreeCoverage:                  0.5,
		MinimumTreeCoverageForAlignUndoBlock: 1.0,
		MinimumTreeCoverageForAlignUndoBlockReduction: 0.1,
		MinimumTreeCoverageForBlocks:                  0.9,
		MinimumBlockLength:                            4,
		MinimumChainLength:                            12,
		AlignRepeats:                                  false,
	}
}

// Validate rejects parameter records the pipeline cannot run with.
func (p Params) Validate() error {
	switch {
	case p.AlignUndoLoops < 1:
		return fmt.Errorf("%w: alignUndoLoops %d < 1", ErrBadParams, p.AlignUndoLoops)
	case p.Trim < 0:
		return fmt.Errorf("%w: trim %d < 0", ErrBadParams, p.Trim)
	case p.ExtensionSteps < 0:
		return fmt.Errorf("%w: extensionSteps %d < 0", ErrBadParams, p.ExtensionSteps)
	case p.MaxEdgeDegree < 1:
		return fmt.Errorf("%w: maxEdgeDegree %d < 1", ErrBadParams, p.MaxEdgeDegree)
	case p.MinimumTreeCoverage < 0 || p.MinimumTreeCoverage > 1:
		return fmt.Errorf("%w: minimumTreeCoverage %v outside [0,1]", ErrBadParams, p.MinimumTreeCoverage)
	case p.MinimumTreeCoverageForBlocks < 0 || p.MinimumTreeCoverageForBlocks > 1:
		return fmt.Errorf("%w: minimumTreeCoverageForBlocks %v outside [0,1]", ErrBadParams, p.MinimumTreeCoverageForBlocks)
	case p.MinimumBlockLength < 0 || p.MinimumChainLength < 0:
		return fmt.Errorf("%w: negative length threshold", ErrBadParams)
	case p.WriteDebugFiles && p.DebugDir == "":
		return fmt.Errorf("%w: writeDebugFiles without debugDir", ErrBadParams)
	}
	return nil
}

// LoadParams reads a YAML parameter file over the defaults and validates.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err = yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	return p, p.Validate()
}
