package wire

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/bft-labs/dmxemu/internal/domain"
)

// HeaderSize is the size of the length prefix in bytes.
const HeaderSize = 4

// Reader decodes frames from a byte stream. It owns a small header scratch
// buffer and is not safe for concurrent use; each connection gets its own.
type Reader struct {
	r       io.Reader
	maxSize int
	phase   Phase
	hdr     [HeaderSize]byte
}

// NewReader returns a Reader that rejects frames larger than maxSize.
// A non-positive maxSize selects domain.DefaultMaxFrameSize.
func NewReader(r io.Reader, maxSize int) *Reader {
	if maxSize <= 0 {
		maxSize = domain.DefaultMaxFrameSize
	}
	return &Reader{r: r, maxSize: maxSize}
}

// MaxSize returns the largest body length the reader accepts.
func (r *Reader) MaxSize() int {
	return r.maxSize
}

// Phase returns what the reader is currently waiting for.
func (r *Reader) Phase() Phase {
	return r.phase
}

// ReadFrame blocks until one complete frame has been read and returns its
// body. The returned slice is freshly allocated and owned by the caller.
//
// Errors are *FrameError values wrapping domain.ErrFrameTooLarge,
// domain.ErrEmptyFrame, domain.ErrConnectionClosed or the underlying I/O
// error. After an error the stream position is undefined except for the
// size violations, which consume nothing past the header.
func (r *Reader) ReadFrame() ([]byte, error) {
	r.phase = PhaseLength
	if n, err := readFull(r.r, r.hdr[:]); err != nil {
		return nil, &FrameError{Phase: PhaseLength, Received: n, Max: r.maxSize, Err: err}
	}

	declared := binary.BigEndian.Uint32(r.hdr[:])
	if declared == 0 {
		return nil, &FrameError{Phase: PhaseLength, Max: r.maxSize, Err: domain.ErrEmptyFrame}
	}
	if uint64(declared) > uint64(r.maxSize) {
		return nil, &FrameError{Phase: PhaseLength, Declared: declared, Max: r.maxSize, Err: domain.ErrFrameTooLarge}
	}

	r.phase = PhaseBody
	body := make([]byte, declared)
	if n, err := readFull(r.r, body); err != nil {
		return nil, &FrameError{Phase: PhaseBody, Declared: declared, Received: n, Max: r.maxSize, Err: err}
	}

	r.phase = PhaseLength
	return body, nil
}

// ReadFrame reads one frame from r. It is a convenience for one-shot use;
// long-lived connections should keep a Reader.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	return NewReader(r, maxSize).ReadFrame()
}

// readFull fills buf, looping over short reads. Unlike io.ReadFull it treats
// a read that returns no bytes and no error as end of stream instead of
// spinning on it. Any end of stream before buf is full maps to
// domain.ErrConnectionClosed.
func readFull(r io.Reader, buf []byte) (int, error) {
	got := 0
	for got < len(buf) {
		n, err := r.Read(buf[got:])
		got += n
		if got == len(buf) {
			// A full buffer wins over an error delivered with the last bytes.
			return got, nil
		}
		switch {
		case err == nil && n == 0:
			return got, domain.ErrConnectionClosed
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return got, domain.ErrConnectionClosed
		case isConnReset(err):
			return got, &closedError{cause: err}
		case err != nil:
			return got, err
		}
	}
	return got, nil
}
