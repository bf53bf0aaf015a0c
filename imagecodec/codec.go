// Package imagecodec implements the GICL lossless grayscale image codec:
// MED spatial prediction over row bands, Golomb-Rice coded residuals,
// with a fixed or per-band adaptive coding parameter.
package imagecodec

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-golomb-codec/bitstream"
	"github.com/cocosip/go-golomb-codec/codec"
	"github.com/cocosip/go-golomb-codec/golomb"
)

// BandRows is the number of image rows that share one Golomb parameter
const BandRows = 64

// maxM caps the adaptive parameter at what the 16-bit block field can carry
const maxM = 65535

// maxPixels bounds decode-side allocation for corrupt headers
const maxPixels = 1 << 30

// Options selects the coding mode.
// The zero value means fixed mode with the default parameter m = 1.
type Options struct {
	// Adaptive recomputes m per row band and transmits it in-band
	Adaptive bool

	// M is the fixed Golomb parameter; ignored in adaptive mode.
	// Zero selects the default of 1.
	M int
}

func (o Options) fixedM() (int, error) {
	if o.M == 0 {
		return 1, nil
	}
	if o.M < 0 || o.M > maxM {
		return 0, fmt.Errorf("%w: fixed m %d out of range [1,%d]", codec.ErrInvalidParameter, o.M, maxM)
	}
	return o.M, nil
}

// Encoder encodes 8-bit grayscale pixel buffers into GICL streams
type Encoder struct {
	width  int
	height int
	opts   Options
	stats  codec.Stats
}

// NewEncoder creates an encoder for a width x height grayscale image
func NewEncoder(width, height int, opts Options) *Encoder {
	return &Encoder{width: width, height: height, opts: opts}
}

// Encode encodes an 8-bit grayscale image. pixels holds one byte per
// pixel in row-major order.
func Encode(pixels []byte, width, height int, opts Options) ([]byte, error) {
	return NewEncoder(width, height, opts).Encode(pixels)
}

// Stats reports raw and coded sizes of the most recent Encode call
func (enc *Encoder) Stats() codec.Stats {
	return enc.stats
}

// Encode encodes the pixel buffer
func (enc *Encoder) Encode(pixels []byte) ([]byte, error) {
	if enc.width <= 0 || enc.height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", codec.ErrInvalidParameter, enc.width, enc.height)
	}
	if len(pixels) != enc.width*enc.height {
		return nil, fmt.Errorf("%w: pixel buffer is %d bytes, want %d",
			codec.ErrInvalidParameter, len(pixels), enc.width*enc.height)
	}
	fixedM, err := enc.opts.fixedM()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	header := NewHeader(enc.width, enc.height, enc.opts.Adaptive, fixedM)
	if _, err := header.WriteTo(&buf); err != nil {
		return nil, err
	}

	// Residuals per row band. Prediction runs on the original pixels:
	// lossless reconstruction makes them identical to the decoder's view.
	numBands := (enc.height + BandRows - 1) / BandRows
	bands := make([][]int, numBands)
	for row := 0; row < enc.height; row++ {
		band := row / BandRows
		for col := 0; col < enc.width; col++ {
			a, b, c := neighbors(pixels, enc.width, row, col)
			p := Predict(a, b, c)
			x := int(pixels[row*enc.width+col])
			bands[band] = append(bands[band], x-p)
		}
	}

	bw := bitstream.NewWriter(&buf)
	coder, err := golomb.New(fixedM, golomb.Interleave)
	if err != nil {
		return nil, err
	}

	for i, band := range bands {
		if enc.opts.Adaptive {
			m := golomb.EstimateM(band)
			if m > maxM {
				m = maxM
			}
			if err := bw.WriteBits(uint64(m), 16); err != nil {
				return nil, fmt.Errorf("write band %d parameter: %w", i, err)
			}
			if err := coder.SetM(m); err != nil {
				return nil, err
			}
		}

		for _, residual := range band {
			if err := coder.Encode(residual, bw); err != nil {
				return nil, fmt.Errorf("encode band %d: %w", i, err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("flush bitstream: %w", err)
	}

	enc.stats = codec.Stats{RawBytes: len(pixels), CodedBytes: buf.Len()}
	return buf.Bytes(), nil
}

// Decode decodes a GICL stream back into the pixel buffer and its
// dimensions. The reconstruction is exact.
func Decode(data []byte) ([]byte, int, int, error) {
	r := bytes.NewReader(data)

	header, err := ReadHeader(r)
	if err != nil {
		return nil, 0, 0, err
	}

	if uint64(header.Width)*uint64(header.Height) > maxPixels {
		return nil, 0, 0, fmt.Errorf("%w: image %dx%d exceeds pixel limit", codec.ErrFormat, header.Width, header.Height)
	}
	width := int(header.Width)
	height := int(header.Height)
	pixels := make([]byte, width*height)

	br := bitstream.NewReader(r)
	initialM := 1
	if !header.Adaptive {
		if header.FixedM == 0 {
			return nil, 0, 0, fmt.Errorf("%w: fixed-mode header carries m = 0", codec.ErrInvalidParameter)
		}
		initialM = int(header.FixedM)
	}
	coder, err := golomb.New(initialM, golomb.Interleave)
	if err != nil {
		return nil, 0, 0, err
	}

	for row := 0; row < height; row++ {
		if header.Adaptive && row%BandRows == 0 {
			m, err := br.ReadBits(16)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("%w: band %d parameter", codec.ErrTruncatedStream, row/BandRows)
			}
			if m == 0 {
				m = 1
			}
			if err := coder.SetM(int(m)); err != nil {
				return nil, 0, 0, err
			}
		}

		for col := 0; col < width; col++ {
			a, b, c := neighbors(pixels, width, row, col)
			p := Predict(a, b, c)

			residual, err := coder.Decode(br)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("decode pixel (%d,%d): %w", row, col, err)
			}

			x := residual + p
			// Clamp against decode-time drift
			if x < 0 {
				x = 0
			}
			if x > 255 {
				x = 255
			}
			pixels[row*width+col] = byte(x)
		}
	}

	return pixels, width, height, nil
}

var _ codec.Codec = (*Codec)(nil)

// Codec exposes the GICL codec through the shared registry
type Codec struct{}

// Tag returns the GICL format tag
func (c *Codec) Tag() string {
	return FormatTag
}

// Name returns a human-readable name for this codec
func (c *Codec) Name() string {
	return "Golomb Image Lossless"
}

// Decode decodes a GICL stream for registry-dispatched use
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	pixels, width, height, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return &codec.DecodeResult{
		Tag:    FormatTag,
		Pixels: pixels,
		Width:  width,
		Height: height,
	}, nil
}

func init() {
	codec.Register(&Codec{})
}
