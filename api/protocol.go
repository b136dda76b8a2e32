package api

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxMessageSize is the largest frame accepted (50MB).
const MaxMessageSize = 50 * 1024 * 1024

// ErrMessageTooLarge is returned for frames over the configured limit.
var ErrMessageTooLarge = errors.New("message size exceeds maximum allowed size")

// ReadMessage reads one frame: a 4-byte big-endian length, then the payload.
// Frames over limit bytes are rejected before the payload is read.
func ReadMessage(r io.Reader, limit int) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	if int64(length) > int64(limit) {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrMessageTooLarge, length, limit)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return buf, nil
}

// WriteMessage writes data as one frame.
func WriteMessage(w io.Writer, data []byte, limit int) error {
	if len(data) > math.MaxUint32 || len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrMessageTooLarge, len(data), limit)
	}

	length := uint32(len(data)) // #nosec G115 - bounds checked above
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("failed to write message length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	return nil
}
