// Package golomb implements Golomb-Rice entropy coding of signed integers
// for a general parameter m, together with the adaptive parameter estimator
// used by the block codecs.
package golomb

import (
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/cocosip/go-golomb-codec/bitstream"
	"github.com/cocosip/go-golomb-codec/codec"
)

// SignMode selects how signed values are mapped onto the non-negative
// Golomb code.
type SignMode int

const (
	// Interleave maps n>=0 to 2n and n<0 to -2n-1 (zig-zag): even codes
	// carry non-negative values, odd codes negative ones.
	Interleave SignMode = iota

	// SignMagnitude writes one explicit sign bit followed by the Golomb
	// code of |n|.
	SignMagnitude
)

// Coder encodes and decodes signed integers with Golomb-Rice codes.
// The parameter m may be changed between codewords, never during one.
type Coder struct {
	m    int
	mode SignMode
}

// New creates a Coder with parameter m. m must be positive.
func New(m int, mode SignMode) (*Coder, error) {
	c := &Coder{mode: mode}
	if err := c.SetM(m); err != nil {
		return nil, err
	}
	return c, nil
}

// SetM replaces the Golomb parameter. m must be positive.
func (c *Coder) SetM(m int) error {
	if m <= 0 {
		return fmt.Errorf("%w: golomb m must be > 0, got %d", codec.ErrInvalidParameter, m)
	}
	c.m = m
	return nil
}

// M returns the current Golomb parameter
func (c *Coder) M() int {
	return c.m
}

// Encode writes the Golomb codeword for n. In SignMagnitude mode the
// most negative int is rejected: its magnitude is not representable.
func (c *Coder) Encode(n int, bw *bitstream.Writer) error {
	if c.mode == Interleave {
		// Mapped in uint64 so the doubling cannot overflow for any int.
		var mapped uint64
		if n >= 0 {
			mapped = 2 * uint64(n)
		} else {
			mapped = 2*uint64(-(n+1)) + 1
		}
		return c.encodeUnsigned(mapped, bw)
	}

	if n == math.MinInt {
		return fmt.Errorf("%w: magnitude of %d is not representable", codec.ErrInvalidParameter, n)
	}

	signBit := 0
	if n < 0 {
		signBit = 1
		n = -n
	}
	if err := bw.WriteBit(signBit); err != nil {
		return err
	}
	return c.encodeUnsigned(uint64(n), bw)
}

// Decode reads one Golomb codeword and returns the signed value
func (c *Coder) Decode(br *bitstream.Reader) (int, error) {
	if c.mode == Interleave {
		mapped, err := c.decodeUnsigned(br)
		if err != nil {
			return 0, err
		}
		if mapped%2 == 0 {
			return int(mapped / 2), nil
		}
		return -int(mapped/2) - 1, nil
	}

	signBit, err := br.ReadBit()
	if err != nil {
		return 0, truncated("sign bit", err)
	}
	mag, err := c.decodeUnsigned(br)
	if err != nil {
		return 0, err
	}
	if signBit == 1 {
		return -int(mag), nil
	}
	return int(mag), nil
}

// encodeUnsigned writes the Golomb-Rice code of u: quotient in unary,
// remainder in truncated binary. m == 1 degenerates to pure unary.
func (c *Coder) encodeUnsigned(u uint64, bw *bitstream.Writer) error {
	if c.m == 1 {
		return writeUnary(u, bw)
	}

	m := uint64(c.m)
	q := u / m
	r := u % m

	if err := writeUnary(q, bw); err != nil {
		return err
	}

	b := ceilLog2(c.m)
	cutoff := uint64(1)<<uint(b) - m

	if r < cutoff {
		return bw.WriteBits(r, b-1)
	}
	return bw.WriteBits(r+cutoff, b)
}

// decodeUnsigned mirrors encodeUnsigned
func (c *Coder) decodeUnsigned(br *bitstream.Reader) (uint64, error) {
	if c.m == 1 {
		return readUnary(br)
	}

	q, err := readUnary(br)
	if err != nil {
		return 0, err
	}

	m := uint64(c.m)
	b := ceilLog2(c.m)
	cutoff := uint64(1)<<uint(b) - m

	head, err := br.ReadBits(b - 1)
	if err != nil {
		return 0, truncated("golomb remainder", err)
	}

	r := head
	if head >= cutoff {
		tail, err := br.ReadBit()
		if err != nil {
			return 0, truncated("golomb remainder", err)
		}
		r = (head<<1 | uint64(tail)) - cutoff
	}

	return q*m + r, nil
}

// writeUnary emits n zero bits followed by a terminating one bit
func writeUnary(n uint64, bw *bitstream.Writer) error {
	for i := uint64(0); i < n; i++ {
		if err := bw.WriteBit(0); err != nil {
			return err
		}
	}
	return bw.WriteBit(1)
}

// readUnary counts zero bits up to the terminating one bit
func readUnary(br *bitstream.Reader) (uint64, error) {
	n := uint64(0)
	for {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, truncated("unary prefix", err)
		}
		if bit == 1 {
			return n, nil
		}
		n++
	}
}

// ceilLog2 returns ceil(log2(m)) for m > 1
func ceilLog2(m int) int {
	return bits.Len(uint(m - 1))
}

// truncated classifies an end-of-stream hit inside a codeword
func truncated(stage string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: end of stream while reading %s", codec.ErrTruncatedStream, stage)
	}
	return err
}
