// Package bitstream provides bit-granular reading and writing over
// byte-oriented streams. Bits are packed most-significant-bit first.
//
// A Writer and a Reader are distinct types: a stream position is either
// being written or being read, never both.
package bitstream

import "io"

// Writer writes individual bits to an io.Writer, buffering a partial byte
// until it fills or Flush is called.
type Writer struct {
	w          io.Writer
	buffer     uint32 // bit accumulator
	bufferSize int    // number of pending bits (0-7 between calls)
	bytesOut   int    // number of bytes written to the sink
	scratch    [1]byte
}

// NewWriter creates a bit writer over w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteBit writes a single bit (the low bit of b)
func (bw *Writer) WriteBit(b int) error {
	bw.buffer = (bw.buffer << 1) | uint32(b&1)
	bw.bufferSize++

	if bw.bufferSize == 8 {
		return bw.flushByte()
	}
	return nil
}

// WriteBits writes the n least-significant bits of value,
// most-significant-bit first. n must be in [0, 64].
func (bw *Writer) WriteBits(value uint64, n int) error {
	for n > 0 {
		// How many bits fit in the current byte
		space := 8 - bw.bufferSize
		if space > n {
			space = n
		}

		shift := uint(n - space)
		chunk := (value >> shift) & ((1 << uint(space)) - 1)

		bw.buffer = (bw.buffer << uint(space)) | uint32(chunk)
		bw.bufferSize += space
		n -= space

		if bw.bufferSize == 8 {
			if err := bw.flushByte(); err != nil {
				return err
			}
		}
	}
	return nil
}

// flushByte writes the buffered byte to the sink
func (bw *Writer) flushByte() error {
	bw.scratch[0] = byte(bw.buffer)
	bw.buffer = 0
	bw.bufferSize = 0

	if _, err := bw.w.Write(bw.scratch[:]); err != nil {
		return err
	}
	bw.bytesOut++
	return nil
}

// Flush pads any pending partial byte with zero bits and writes it out.
// A Writer with no pending bits flushes to nothing.
func (bw *Writer) Flush() error {
	if bw.bufferSize > 0 {
		bw.buffer <<= uint(8 - bw.bufferSize)
		return bw.flushByte()
	}
	return nil
}

// BytesWritten returns the number of whole bytes emitted so far,
// not counting any pending partial byte.
func (bw *Writer) BytesWritten() int {
	return bw.bytesOut
}

// Reader reads individual bits from an io.Reader.
type Reader struct {
	r          io.Reader
	buffer     uint32 // bit accumulator
	bufferSize int    // number of unread bits in the accumulator
	scratch    [1]byte
}

// NewReader creates a bit reader over r
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadBit reads a single bit. It returns io.EOF when the source is
// exhausted on a byte boundary.
func (br *Reader) ReadBit() (int, error) {
	if br.bufferSize == 0 {
		if err := br.fillBuffer(); err != nil {
			return 0, err
		}
	}

	br.bufferSize--
	bit := int((br.buffer >> uint(br.bufferSize)) & 1)
	return bit, nil
}

// ReadBits reads n bits and assembles them most-significant-bit first.
// n must be in [0, 64]. If the source runs out mid-read the error is
// io.ErrUnexpectedEOF when some bits were already consumed, io.EOF when
// none were.
func (br *Reader) ReadBits(n int) (uint64, error) {
	result := uint64(0)
	read := 0
	for n > 0 {
		if br.bufferSize == 0 {
			if err := br.fillBuffer(); err != nil {
				if err == io.EOF && read > 0 {
					return 0, io.ErrUnexpectedEOF
				}
				return 0, err
			}
		}

		take := n
		if take > br.bufferSize {
			take = br.bufferSize
		}

		br.bufferSize -= take
		chunk := (br.buffer >> uint(br.bufferSize)) & ((1 << uint(take)) - 1)
		result = (result << uint(take)) | uint64(chunk)
		n -= take
		read += take
	}
	return result, nil
}

// fillBuffer reads the next byte from the source
func (br *Reader) fillBuffer() error {
	if _, err := io.ReadFull(br.r, br.scratch[:]); err != nil {
		return err
	}
	br.buffer = uint32(br.scratch[0])
	br.bufferSize = 8
	return nil
}
