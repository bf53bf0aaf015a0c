package codec

import "errors"

var (
	// ErrCodecNotFound is returned when a codec is not found in the registry
	ErrCodecNotFound = errors.New("codec not found")

	// ErrInvalidParameter is returned when a coding parameter is invalid
	// (e.g. a non-positive Golomb m, bad dimensions, short pixel buffer)
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrFormat is returned when a stream's header does not match the
	// expected format (wrong tag, unsupported geometry or bit depth)
	ErrFormat = errors.New("invalid stream format")

	// ErrTruncatedStream is returned when the stream ends in the middle of
	// a header, a block parameter field, or a Golomb codeword
	ErrTruncatedStream = errors.New("truncated stream")
)
