package flower

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ElementCode tags one serialised entity kind in a binary stream.
type ElementCode byte

// Element codes, in the order entities appear inside a net stream.
const (
	CodeNet ElementCode = iota + 1
	CodeEvent
	CodeSequence
	CodeEnd
	CodeCap
	CodeBlock
	CodeSegment
	CodeGroup
	CodeChain
	CodeLink
	CodeAdjacency
)

// Encoder is the store-supplied sink for binary representations. The core
// fixes element tags and field order; the encoder owns the byte format.
// Errors are sticky: after the first failure further calls are no-ops and
// Err reports the failure.
type Encoder interface {
	Tag(ElementCode)
	Name(name string)
	Int(v int)
	Float(v float64)
	String(s string)
	Err() error
}

// Decoder is the inverse capability. PeekTag returns 0 at end of stream.
// Errors are sticky.
type Decoder interface {
	PeekTag() ElementCode
	Tag() ElementCode
	Name() string
	Int() int
	Float() float64
	String() string
	Err() error
}

// BinaryEncoder is the default Encoder: varint integers and length-prefixed
// strings on an io.Writer.
type BinaryEncoder struct {
	w   io.Writer
	err error
}

// NewBinaryEncoder wraps w.
func NewBinaryEncoder(w io.Writer) *BinaryEncoder { return &BinaryEncoder{w: w} }

// Tag writes an element code.
func (e *BinaryEncoder) Tag(c ElementCode) { e.write([]byte{byte(c)}) }

// Name writes a name.
func (e *BinaryEncoder) Name(name string) { e.String(name) }

// Int writes a signed integer.
func (e *BinaryEncoder) Int(v int) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutVarint(buf[:], int64(v))
	e.write(buf[:n])
}

// Float writes a float64.
func (e *BinaryEncoder) Float(v float64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	e.write(buf[:])
}

// String writes a length-prefixed string.
func (e *BinaryEncoder) String(s string) {
	e.Int(len(s))
	e.write([]byte(s))
}

// Err returns the first write failure, if any.
func (e *BinaryEncoder) Err() error { return e.err }

func (e *BinaryEncoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

// BinaryDecoder is the inverse of BinaryEncoder over an in-memory buffer.
type BinaryDecoder struct {
	r   *bytes.Reader
	err error
}

// NewBinaryDecoder wraps the serialised bytes.
func NewBinaryDecoder(data []byte) *BinaryDecoder {
	return &BinaryDecoder{r: bytes.NewReader(data)}
}

// PeekTag returns the next element code without consuming it, or 0 at end of
// stream.
func (d *BinaryDecoder) PeekTag() ElementCode {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	if err != nil {
		return 0
	}
	_ = d.r.UnreadByte()
	return ElementCode(b)
}

// Tag consumes and returns the next element code.
func (d *BinaryDecoder) Tag() ElementCode {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	if err != nil {
		d.err = fmt.Errorf("%w: %v", ErrCorruptStream, err)
		return 0
	}
	return ElementCode(b)
}

// Name reads a name.
func (d *BinaryDecoder) Name() string { return d.String() }

// Int reads a signed integer.
func (d *BinaryDecoder) Int() int {
	if d.err != nil {
		return 0
	}
	v, err := binary.ReadVarint(d.r)
	if err != nil {
		d.err = fmt.Errorf("%w: %v", ErrCorruptStream, err)
		return 0
	}
	return int(v)
}

// Float reads a float64.
func (d *BinaryDecoder) Float() float64 {
	if d.err != nil {
		return 0
	}
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		d.err = fmt.Errorf("%w: %v", ErrCorruptStream, err)
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf[:]))
}

// String reads a length-prefixed string.
func (d *BinaryDecoder) String() string {
	n := d.Int()
	if d.err != nil || n < 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.err = fmt.Errorf("%w: %v", ErrCorruptStream, err)
		return ""
	}
	return string(buf)
}

// Err returns the first decode failure, if any.
func (d *BinaryDecoder) Err() error { return d.err }

// boolToInt serialises a strand flag.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
