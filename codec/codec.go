// Package codec defines the common interface, registry and error taxonomy
// shared by the GICL (image) and GACL (audio) lossless codecs.
package codec

import "fmt"

// tagSize is the length of the format tag opening every stream
const tagSize = 4

// Codec is the universal interface for the lossless codecs in this module
type Codec interface {
	// Tag returns the 4-byte stream format tag (e.g. "GICL", "GACL")
	Tag() string

	// Name returns a human-readable name
	Name() string

	// Decode decodes a complete stream carrying this codec's format tag
	Decode(data []byte) (*DecodeResult, error)
}

// DecodeResult contains the result of a decode. Pixels, Width and Height
// are set for image streams; Samples, Channels and SampleRate for audio
// streams. Tag identifies which codec produced the result.
type DecodeResult struct {
	Tag        string
	Pixels     []byte  // decoded 8-bit grayscale pixels, row-major
	Width      int     // image width
	Height     int     // image height
	Samples    []int16 // decoded interleaved PCM samples
	Channels   int     // number of audio channels
	SampleRate int     // audio sample rate in Hz
}

// Decode dispatches data to the registered codec matching the 4-byte
// format tag at the start of the stream.
func Decode(data []byte) (*DecodeResult, error) {
	if len(data) < tagSize {
		return nil, fmt.Errorf("%w: stream shorter than a format tag", ErrTruncatedStream)
	}

	c, err := Get(string(data[:tagSize]))
	if err != nil {
		return nil, fmt.Errorf("%w: no codec for format tag %q", ErrCodecNotFound, data[:tagSize])
	}
	return c.Decode(data)
}

// Stats reports the outcome of an encode operation.
type Stats struct {
	RawBytes   int // size of the input sample/pixel buffer
	CodedBytes int // size of the produced stream, header included
}

// Ratio returns the compression ratio (raw:coded). Zero if nothing was coded.
func (s Stats) Ratio() float64 {
	if s.CodedBytes == 0 {
		return 0
	}
	return float64(s.RawBytes) / float64(s.CodedBytes)
}
