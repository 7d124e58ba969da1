package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/bft-labs/dmxemu/internal/domain"
)

// AppendFrame appends the encoded form of payload to dst.
func AppendFrame(dst, payload []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...)
}

// WriteFrame writes payload as one frame. The header and body go out in a
// single Write so that a frame is never interleaved with another writer's.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return domain.ErrEmptyFrame
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", domain.ErrFrameTooLarge, len(payload))
	}
	buf := AppendFrame(make([]byte, 0, HeaderSize+len(payload)), payload)
	_, err := w.Write(buf)
	return err
}
