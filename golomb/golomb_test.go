package golomb

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cocosip/go-golomb-codec/bitstream"
	"github.com/cocosip/go-golomb-codec/codec"
)

func TestNewRejectsInvalidM(t *testing.T) {
	for _, m := range []int{0, -1, -100} {
		if _, err := New(m, Interleave); !errors.Is(err, codec.ErrInvalidParameter) {
			t.Errorf("New(%d) error = %v, want ErrInvalidParameter", m, err)
		}
	}

	c, err := New(5, Interleave)
	if err != nil {
		t.Fatalf("New(5) failed: %v", err)
	}
	if err := c.SetM(0); !errors.Is(err, codec.ErrInvalidParameter) {
		t.Errorf("SetM(0) error = %v, want ErrInvalidParameter", err)
	}
	if c.M() != 5 {
		t.Errorf("failed SetM changed m to %d", c.M())
	}
}

func TestRoundTripBothModes(t *testing.T) {
	values := []int{0, 1, -1, 2, -2, 3, -3, 10, -10, 127, -128, 255, 1000, -1000, 32767, -32768}

	for _, mode := range []SignMode{Interleave, SignMagnitude} {
		for _, m := range []int{1, 2, 3, 4, 5, 7, 8, 10, 31, 64, 1000} {
			var buf bytes.Buffer
			bw := bitstream.NewWriter(&buf)

			c, err := New(m, mode)
			if err != nil {
				t.Fatalf("New(%d) failed: %v", m, err)
			}

			for _, v := range values {
				if err := c.Encode(v, bw); err != nil {
					t.Fatalf("Encode(%d) with m=%d failed: %v", v, m, err)
				}
			}
			if err := bw.Flush(); err != nil {
				t.Fatalf("Flush failed: %v", err)
			}

			br := bitstream.NewReader(bytes.NewReader(buf.Bytes()))
			for _, v := range values {
				got, err := c.Decode(br)
				if err != nil {
					t.Fatalf("Decode with m=%d failed: %v", m, err)
				}
				if got != v {
					t.Errorf("mode=%v m=%d: decoded %d, want %d", mode, m, got, v)
				}
			}
		}
	}
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, mode := range []SignMode{Interleave, SignMagnitude} {
		values := make([]int, 2000)
		for i := range values {
			values[i] = rng.Intn(65536) - 32768
		}

		m := EstimateM(values)
		c, err := New(m, mode)
		if err != nil {
			t.Fatalf("New(%d) failed: %v", m, err)
		}

		var buf bytes.Buffer
		bw := bitstream.NewWriter(&buf)
		for _, v := range values {
			if err := c.Encode(v, bw); err != nil {
				t.Fatalf("Encode(%d) failed: %v", v, err)
			}
		}
		if err := bw.Flush(); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}

		br := bitstream.NewReader(bytes.NewReader(buf.Bytes()))
		for i, v := range values {
			got, err := c.Decode(br)
			if err != nil {
				t.Fatalf("Decode %d failed: %v", i, err)
			}
			if got != v {
				t.Fatalf("value %d: decoded %d, want %d", i, got, v)
			}
		}

		t.Logf("mode=%v m=%d: %d values in %d bytes", mode, m, len(values), buf.Len())
	}
}

func TestUnaryDegeneracy(t *testing.T) {
	// With m = 1 the code is pure unary: u zero bits and a terminator.
	values := []int{0, 1, 2, 3, 5, 10}

	var buf bytes.Buffer
	bw := bitstream.NewWriter(&buf)

	c, err := New(1, Interleave)
	if err != nil {
		t.Fatalf("New(1) failed: %v", err)
	}

	expectedBits := 0
	for _, v := range values {
		if err := c.Encode(v, bw); err != nil {
			t.Fatalf("Encode(%d) failed: %v", v, err)
		}
		// Interleave maps v >= 0 to 2v; unary codeword length is 2v+1.
		expectedBits += 2*v + 1
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	expectedBytes := (expectedBits + 7) / 8
	if buf.Len() != expectedBytes {
		t.Errorf("encoded %d bytes, want %d (pure unary)", buf.Len(), expectedBytes)
	}

	br := bitstream.NewReader(bytes.NewReader(buf.Bytes()))
	for _, v := range values {
		got, err := c.Decode(br)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got != v {
			t.Errorf("decoded %d, want %d", got, v)
		}
	}
}

func TestUnaryBitPattern(t *testing.T) {
	// Encoding 0 with m=1 is a lone terminator bit: flushes to 0x80.
	var buf bytes.Buffer
	bw := bitstream.NewWriter(&buf)

	c, _ := New(1, Interleave)
	if err := c.Encode(0, bw); err != nil {
		t.Fatalf("Encode(0) failed: %v", err)
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if got := buf.Bytes(); len(got) != 1 || got[0] != 0x80 {
		t.Errorf("Encode(0) m=1 = % x, want 80", got)
	}
}

func TestTruncatedCodeword(t *testing.T) {
	// A run of zero bits with no terminator: the unary read must fail
	// with ErrTruncatedStream, not loop or fabricate a value.
	c, _ := New(1, Interleave)
	br := bitstream.NewReader(bytes.NewReader([]byte{0x00}))
	if _, err := c.Decode(br); !errors.Is(err, codec.ErrTruncatedStream) {
		t.Errorf("truncated unary decode error = %v, want ErrTruncatedStream", err)
	}

	// 0x01 ends exactly at the unary terminator: the truncated-binary
	// remainder bits are missing.
	c5, _ := New(5, Interleave)
	br = bitstream.NewReader(bytes.NewReader([]byte{0x01}))
	if _, err := c5.Decode(br); !errors.Is(err, codec.ErrTruncatedStream) {
		t.Errorf("truncated remainder decode error = %v, want ErrTruncatedStream", err)
	}

	// Empty stream in sign-magnitude mode: the sign bit itself is missing.
	cs, _ := New(3, SignMagnitude)
	br = bitstream.NewReader(bytes.NewReader(nil))
	if _, err := cs.Decode(br); !errors.Is(err, codec.ErrTruncatedStream) {
		t.Errorf("missing sign bit decode error = %v, want ErrTruncatedStream", err)
	}
}

func TestTruncatedBinaryRemainder(t *testing.T) {
	// m=5: b=3, cutoff=3. Remainders 0..2 take 2 bits, 3..4 take 3 bits.
	cases := []struct {
		value int
		bits  int // codeword length for the zig-zag mapped value
	}{
		{0, 3},  // u=0: q=0 (1 bit) + r=0 (2 bits)
		{1, 3},  // u=2: q=0 + r=2 (2 bits)
		{2, 4},  // u=4: q=0 + r=4 (3 bits)
		{-3, 4}, // u=5: q=1 (2 bits) + r=0 (2 bits)
	}

	c, _ := New(5, Interleave)
	for _, tc := range cases {
		var buf bytes.Buffer
		bw := bitstream.NewWriter(&buf)
		if err := c.Encode(tc.value, bw); err != nil {
			t.Fatalf("Encode(%d) failed: %v", tc.value, err)
		}
		if err := bw.Flush(); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}

		wantBytes := (tc.bits + 7) / 8
		if buf.Len() != wantBytes {
			t.Errorf("Encode(%d): %d bytes, want %d (%d bits)", tc.value, buf.Len(), wantBytes, tc.bits)
		}

		br := bitstream.NewReader(bytes.NewReader(buf.Bytes()))
		got, err := c.Decode(br)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got != tc.value {
			t.Errorf("decoded %d, want %d", got, tc.value)
		}
	}
}

func TestSignMagnitudeMinIntRejected(t *testing.T) {
	// |math.MinInt| does not fit in an int, so sign-and-magnitude
	// coding must refuse it rather than negate and overflow.
	c, _ := New(4, SignMagnitude)

	var buf bytes.Buffer
	bw := bitstream.NewWriter(&buf)
	if err := c.Encode(math.MinInt, bw); !errors.Is(err, codec.ErrInvalidParameter) {
		t.Errorf("Encode(MinInt) error = %v, want ErrInvalidParameter", err)
	}
	if buf.Len() != 0 {
		t.Errorf("rejected Encode emitted %d bytes", buf.Len())
	}
}

func TestInterleaveIntExtremes(t *testing.T) {
	// The zig-zag mapping covers the whole int range. A parameter of
	// math.MaxInt keeps the quotients tiny, so even the extreme
	// codewords stay a handful of bits.
	values := []int{math.MinInt, math.MinInt + 1, -1, 0, 1, math.MaxInt}

	c, err := New(math.MaxInt, Interleave)
	if err != nil {
		t.Fatalf("New(MaxInt) failed: %v", err)
	}

	var buf bytes.Buffer
	bw := bitstream.NewWriter(&buf)
	for _, v := range values {
		if err := c.Encode(v, bw); err != nil {
			t.Fatalf("Encode(%d) failed: %v", v, err)
		}
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	br := bitstream.NewReader(bytes.NewReader(buf.Bytes()))
	for _, v := range values {
		got, err := c.Decode(br)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got != v {
			t.Errorf("decoded %d, want %d", got, v)
		}
	}
}

func TestParameterSwitchBetweenCodewords(t *testing.T) {
	// Adaptive block coding changes m between codewords; both sides must
	// agree as long as the same schedule is applied.
	schedule := []struct {
		m     int
		value int
	}{
		{1, 4}, {17, -250}, {3, 0}, {64, 4096},
	}

	var buf bytes.Buffer
	bw := bitstream.NewWriter(&buf)
	c, _ := New(1, Interleave)

	for _, s := range schedule {
		if err := c.SetM(s.m); err != nil {
			t.Fatalf("SetM(%d) failed: %v", s.m, err)
		}
		if err := c.Encode(s.value, bw); err != nil {
			t.Fatalf("Encode(%d) failed: %v", s.value, err)
		}
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	br := bitstream.NewReader(bytes.NewReader(buf.Bytes()))
	dec, _ := New(1, Interleave)
	for _, s := range schedule {
		if err := dec.SetM(s.m); err != nil {
			t.Fatalf("SetM(%d) failed: %v", s.m, err)
		}
		got, err := dec.Decode(br)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got != s.value {
			t.Errorf("m=%d: decoded %d, want %d", s.m, got, s.value)
		}
	}
}
