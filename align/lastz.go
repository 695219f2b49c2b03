package align

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ostreida/pinchnet/flower"
)

// ConvertCoordinates inverts the fasta_chunk header encoding on both contig
// names of the alignment: "name|chunkStart|originalLength" becomes "name"
// and the coordinates shift into the original sequence.
func ConvertCoordinates(pa *PairwiseAlignment) error {
	name, offset, err := decodeChunkHeader(pa.Contig1)
	if err != nil {
		return err
	}
	pa.Contig1 = name
	pa.Start1 += offset
	pa.End1 += offset

	name, offset, err = decodeChunkHeader(pa.Contig2)
	if err != nil {
		return err
	}
	pa.Contig2 = name
	pa.Start2 += offset
	pa.End2 += offset
	return nil
}

// decodeChunkHeader splits a fasta_chunk encoded header into the stripped
// name and the chunk offset. Headers without the encoding pass through with
// offset zero.
func decodeChunkHeader(header string) (string, int, error) {
	parts := strings.Split(header, "|")
	if len(parts) < 3 {
		return header, 0, nil
	}
	offset, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return "", 0, fmt.Errorf("%w: chunk start in %q", ErrMalformed, header)
	}
	if _, err = strconv.Atoi(parts[len(parts)-1]); err != nil {
		return "", 0, fmt.Errorf("%w: original length in %q", ErrMalformed, header)
	}
	return strings.Join(parts[:len(parts)-2], "|"), offset, nil
}

// SelfAlignSequences writes the sequences of at least minimumSequenceLength
// bases to a temporary fasta file, self-aligns them with lastz and returns
// the parsed alignments sorted by descending score. The temporary file is
// removed before returning. Extra lastz arguments are passed through.
func SelfAlignSequences(sequences []*flower.Sequence, minimumSequenceLength int, lastzArgs []string) ([]*PairwiseAlignment, error) {
	tmp, err := os.CreateTemp("", "pinchnet-lastz-*.fa")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubprocess, err)
	}
	defer os.Remove(tmp.Name())

	written := 0
	for _, seq := range sequences {
		if seq.Length() < minimumSequenceLength {
			continue
		}
		bases, err := seq.Slice(seq.Start(), seq.Length(), true)
		if err != nil {
			tmp.Close()
			return nil, err
		}
		if _, err = fmt.Fprintf(tmp, ">%s\n%s\n", seq.Name(), bases); err != nil {
			tmp.Close()
			return nil, fmt.Errorf("%w: %v", ErrSubprocess, err)
		}
		written++
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubprocess, err)
	}
	if written == 0 {
		return nil, nil
	}

	args := append([]string{}, lastzArgs...)
	args = append(args, "--format=cigar", "--notrivial",
		tmp.Name()+"[multiple][nameparse=darkspace]",
		tmp.Name()+"[nameparse=darkspace]")
	cmd := exec.Command("lastz", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubprocess, err)
	}
	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubprocess, err)
	}

	var alignments []*PairwiseAlignment
	reader := NewCigarReader(stdout)
	for {
		pa, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = cmd.Wait()
			return nil, err
		}
		if err = ConvertCoordinates(pa); err != nil {
			_ = cmd.Wait()
			return nil, err
		}
		alignments = append(alignments, pa)
	}
	if err = cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%w: lastz: %v", ErrSubprocess, err)
	}
	SortByScore(alignments)
	return alignments, nil
}
