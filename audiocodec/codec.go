// Package audiocodec implements the GACL lossless PCM audio codec:
// temporal per-channel prediction over interleaved 16-bit frames,
// Golomb-Rice coded residuals, with a fixed or per-block adaptive
// coding parameter.
package audiocodec

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-golomb-codec/bitstream"
	"github.com/cocosip/go-golomb-codec/codec"
	"github.com/cocosip/go-golomb-codec/golomb"
)

// BlockFrames is the number of multi-channel frames that share one
// Golomb parameter
const BlockFrames = 4096

// maxM caps the adaptive parameter at what the 16-bit block field can carry
const maxM = 65535

// Options selects the coding mode.
// The zero value means fixed mode with the default parameter m = 1.
type Options struct {
	// Adaptive recomputes m per block and transmits it in-band
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

// Encoder encodes interleaved 16-bit PCM buffers into GACL streams
type Encoder struct {
	channels   int
	sampleRate int
	opts       Options
	stats      codec.Stats
}

// NewEncoder creates an encoder for an interleaved PCM stream
func NewEncoder(channels, sampleRate int, opts Options) *Encoder {
	return &Encoder{channels: channels, sampleRate: sampleRate, opts: opts}
}

// Encode encodes interleaved 16-bit PCM samples. For stereo input the
// slice alternates left, right, left, right, ...
func Encode(samples []int16, channels, sampleRate int, opts Options) ([]byte, error) {
	return NewEncoder(channels, sampleRate, opts).Encode(samples)
}

// Stats reports raw and coded sizes of the most recent Encode call
func (enc *Encoder) Stats() codec.Stats {
	return enc.stats
}

// Encode encodes the sample buffer
func (enc *Encoder) Encode(samples []int16) ([]byte, error) {
	if enc.channels != 1 && enc.channels != 2 {
		return nil, fmt.Errorf("%w: %d channels (mono and stereo only)", codec.ErrFormat, enc.channels)
	}
	if len(samples)%enc.channels != 0 {
		return nil, fmt.Errorf("%w: %d samples do not fill %d-channel frames",
			codec.ErrInvalidParameter, len(samples), enc.channels)
	}
	fixedM, err := enc.opts.fixedM()
	if err != nil {
		return nil, err
	}

	totalFrames := len(samples) / enc.channels

	var buf bytes.Buffer
	header := NewHeader(enc.channels, enc.sampleRate, uint64(totalFrames), enc.opts.Adaptive, fixedM)
	if _, err := header.WriteTo(&buf); err != nil {
		return nil, err
	}

	bw := bitstream.NewWriter(&buf)
	coder, err := golomb.New(fixedM, golomb.Interleave)
	if err != nil {
		return nil, err
	}

	var pred Predictor
	residuals := make([]int, 0, BlockFrames*enc.channels)

	for start := 0; start < totalFrames; start += BlockFrames {
		frames := totalFrames - start
		if frames > BlockFrames {
			frames = BlockFrames
		}

		// Residuals for all channels of a frame are interleaved before
		// the next frame. Input equals reconstruction (lossless), so the
		// predictor may run directly on the originals.
		residuals = residuals[:0]
		for i := 0; i < frames; i++ {
			frame := samples[(start+i)*enc.channels:]
			left := int(frame[0])
			residuals = append(residuals, left-pred.PredictLeft())
			if enc.channels == 2 {
				right := int(frame[1])
				residuals = append(residuals, right-pred.PredictRight(left))
			}
			pred.Advance(left)
		}

		blockIdx := start / BlockFrames
		if enc.opts.Adaptive {
			m := golomb.EstimateM(residuals)
			if m > maxM {
				m = maxM
			}
			if err := bw.WriteBits(uint64(m), 16); err != nil {
				return nil, fmt.Errorf("write block %d parameter: %w", blockIdx, err)
			}
			if err := coder.SetM(m); err != nil {
				return nil, err
			}
		}

		for _, residual := range residuals {
			if err := coder.Encode(residual, bw); err != nil {
				return nil, fmt.Errorf("encode block %d: %w", blockIdx, err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("flush bitstream: %w", err)
	}

	enc.stats = codec.Stats{RawBytes: len(samples) * 2, CodedBytes: buf.Len()}
	return buf.Bytes(), nil
}

// Decode decodes a GACL stream back into interleaved 16-bit PCM samples
// plus the stream header. The reconstruction is exact.
func Decode(data []byte) ([]int16, *Header, error) {
	r := bytes.NewReader(data)

	header, err := ReadHeader(r)
	if err != nil {
		return nil, nil, err
	}

	br := bitstream.NewReader(r)
	initialM := 1
	if !header.Adaptive {
		if header.FixedM == 0 {
			return nil, nil, fmt.Errorf("%w: fixed-mode header carries m = 0", codec.ErrInvalidParameter)
		}
		initialM = int(header.FixedM)
	}
	coder, err := golomb.New(initialM, golomb.Interleave)
	if err != nil {
		return nil, nil, err
	}

	channels := int(header.Channels)
	// Capacity bounded by one block so a corrupt frame count cannot force
	// a huge allocation before the first codeword is even read.
	capFrames := header.TotalFrames
	if capFrames > BlockFrames {
		capFrames = BlockFrames
	}
	samples := make([]int16, 0, int(capFrames)*channels)

	var pred Predictor
	remaining := header.TotalFrames

	for blockIdx := 0; remaining > 0; blockIdx++ {
		if header.Adaptive {
			m, err := br.ReadBits(16)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: block %d parameter", codec.ErrTruncatedStream, blockIdx)
			}
			if m == 0 {
				m = 1
			}
			if err := coder.SetM(int(m)); err != nil {
				return nil, nil, err
			}
		}

		frames := uint64(BlockFrames)
		if remaining < frames {
			frames = remaining
		}

		for i := uint64(0); i < frames; i++ {
			resLeft, err := coder.Decode(br)
			if err != nil {
				return nil, nil, fmt.Errorf("decode block %d frame %d: %w", blockIdx, i, err)
			}
			left := resLeft + pred.PredictLeft()

			samples = append(samples, int16(left))
			if channels == 2 {
				resRight, err := coder.Decode(br)
				if err != nil {
					return nil, nil, fmt.Errorf("decode block %d frame %d: %w", blockIdx, i, err)
				}
				right := resRight + pred.PredictRight(left)
				samples = append(samples, int16(right))
			}
			pred.Advance(left)
		}

		remaining -= frames
	}

	return samples, &header, nil
}

var _ codec.Codec = (*Codec)(nil)

// Codec exposes the GACL codec through the shared registry
type Codec struct{}

// Tag returns the GACL format tag
func (c *Codec) Tag() string {
	return FormatTag
}

// Name returns a human-readable name for this codec
func (c *Codec) Name() string {
	return "Golomb Audio Lossless"
}

// Decode decodes a GACL stream for registry-dispatched use
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	samples, header, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return &codec.DecodeResult{
		Tag:        FormatTag,
		Samples:    samples,
		Channels:   int(header.Channels),
		SampleRate: int(header.SampleRate),
	}, nil
}

func init() {
	codec.Register(&Codec{})
}
