package audiocodec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/go-golomb-codec/codec"
)

// FormatTag identifies a GACL audio stream
const FormatTag = "GACL"

// Version is the current stream format version
const Version = 1

// BitsPerSample is the only supported PCM sample width
const BitsPerSample = 16

// headerSize is the on-disk header length in bytes
const headerSize = 4 + 2 + 2 + 4 + 2 + 8 + 1 + 2

// Header describes a GACL stream. It is written once at stream start and
// never changes afterwards.
type Header struct {
	Tag           [4]byte
	Version       uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	TotalFrames   uint64 // frames per channel
	Adaptive      bool
	FixedM        uint16 // meaningful only when Adaptive is false
}

// NewHeader builds a GACL header with the default tag, version and sample
// width filled in
func NewHeader(channels, sampleRate int, totalFrames uint64, adaptive bool, fixedM int) Header {
	h := Header{
		Version:       Version,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		BitsPerSample: BitsPerSample,
		TotalFrames:   totalFrames,
		Adaptive:      adaptive,
		FixedM:        uint16(fixedM),
	}
	copy(h.Tag[:], FormatTag)
	return h
}

var _ io.WriterTo = (*Header)(nil)

// WriteTo serializes the header field by field, little-endian
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, headerSize)
	copy(buf[0:4], h.Tag[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Channels)
	binary.LittleEndian.PutUint32(buf[8:12], h.SampleRate)
	binary.LittleEndian.PutUint16(buf[12:14], h.BitsPerSample)
	binary.LittleEndian.PutUint64(buf[14:22], h.TotalFrames)
	if h.Adaptive {
		buf[22] = 1
	}
	binary.LittleEndian.PutUint16(buf[23:25], h.FixedM)

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("write audio header: %w", err)
	}
	return int64(n), nil
}

// ReadHeader deserializes and validates a GACL header
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Header{}, fmt.Errorf("%w: audio header", codec.ErrTruncatedStream)
		}
		return Header{}, fmt.Errorf("read audio header: %w", err)
	}

	var h Header
	copy(h.Tag[:], buf[0:4])
	if string(h.Tag[:]) != FormatTag {
		return Header{}, fmt.Errorf("%w: tag %q, want %q", codec.ErrFormat, h.Tag[:], FormatTag)
	}

	h.Version = binary.LittleEndian.Uint16(buf[4:6])
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", codec.ErrFormat, h.Version)
	}

	h.Channels = binary.LittleEndian.Uint16(buf[6:8])
	if h.Channels != 1 && h.Channels != 2 {
		return Header{}, fmt.Errorf("%w: %d channels (mono and stereo only)", codec.ErrFormat, h.Channels)
	}

	h.SampleRate = binary.LittleEndian.Uint32(buf[8:12])

	h.BitsPerSample = binary.LittleEndian.Uint16(buf[12:14])
	if h.BitsPerSample != BitsPerSample {
		return Header{}, fmt.Errorf("%w: %d bits per sample, want %d", codec.ErrFormat, h.BitsPerSample, BitsPerSample)
	}

	h.TotalFrames = binary.LittleEndian.Uint64(buf[14:22])
	h.Adaptive = buf[22] != 0
	h.FixedM = binary.LittleEndian.Uint16(buf[23:25])

	return h, nil
}
