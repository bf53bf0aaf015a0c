package imagecodec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/go-golomb-codec/codec"
)

// FormatTag identifies a GICL image stream
const FormatTag = "GICL"

// Version is the current stream format version
const Version = 1

// headerSize is the on-disk header length in bytes
const headerSize = 4 + 2 + 4 + 4 + 1 + 2

// Header describes a GICL stream. It is written once at stream start and
// never changes afterwards.
type Header struct {
	Tag      [4]byte
	Version  uint16
	Width    uint32
	Height   uint32
	Adaptive bool
	FixedM   uint16 // meaningful only when Adaptive is false
}

// NewHeader builds a GICL header with the default tag and version filled in
func NewHeader(width, height int, adaptive bool, fixedM int) Header {
	h := Header{
		Version:  Version,
		Width:    uint32(width),
		Height:   uint32(height),
		Adaptive: adaptive,
		FixedM:   uint16(fixedM),
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
	binary.LittleEndian.PutUint32(buf[6:10], h.Width)
	binary.LittleEndian.PutUint32(buf[10:14], h.Height)
	if h.Adaptive {
		buf[14] = 1
	}
	binary.LittleEndian.PutUint16(buf[15:17], h.FixedM)

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("write image header: %w", err)
	}
	return int64(n), nil
}

// ReadHeader deserializes and validates a GICL header
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Header{}, fmt.Errorf("%w: image header", codec.ErrTruncatedStream)
		}
		return Header{}, fmt.Errorf("read image header: %w", err)
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

	h.Width = binary.LittleEndian.Uint32(buf[6:10])
	h.Height = binary.LittleEndian.Uint32(buf[10:14])
	if h.Width == 0 || h.Height == 0 {
		return Header{}, fmt.Errorf("%w: zero dimension %dx%d", codec.ErrFormat, h.Width, h.Height)
	}

	h.Adaptive = buf[14] != 0
	h.FixedM = binary.LittleEndian.Uint16(buf[15:17])

	return h, nil
}
