package logfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rusenback/ssreport/internal/model"
)

// Cursor reads big-endian values sequentially from a byte stream
type Cursor struct {
	r   io.Reader
	off int64
	buf [8]byte
}

// NewCursor wraps r. Readers that are not already buffered get a bufio.Reader.
func NewCursor(r io.Reader) *Cursor {
	if _, ok := r.(io.ByteReader); !ok {
		r = bufio.NewReader(r)
	}
	return &Cursor{r: r}
}

// Offset returns the number of bytes consumed so far
func (c *Cursor) Offset() int64 {
	return c.off
}

// fill reads exactly len(p) bytes or fails with ErrEndOfStream
func (c *Cursor) fill(p []byte) error {
	n, err := io.ReadFull(c.r, p)
	c.off += int64(n)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("need %d bytes, got %d: %w", len(p), n, ErrEndOfStream)
	}
	return err
}

// ReadFixed decodes a big-endian integer of 1, 2, 4 or 8 bytes. Signed
// values are sign-extended and returned as their two's complement bits.
func (c *Cursor) ReadFixed(width int, signed bool) (uint64, error) {
	b := c.buf[:width]
	if err := c.fill(b); err != nil {
		return 0, err
	}
	switch width {
	case 1:
		if signed {
			return uint64(int64(int8(b[0]))), nil
		}
		return uint64(b[0]), nil
	case 2:
		v := binary.BigEndian.Uint16(b)
		if signed {
			return uint64(int64(int16(v))), nil
		}
		return uint64(v), nil
	case 4:
		v := binary.BigEndian.Uint32(b)
		if signed {
			return uint64(int64(int32(v))), nil
		}
		return uint64(v), nil
	case 8:
		return binary.BigEndian.Uint64(b), nil
	default:
		return 0, fmt.Errorf("unsupported width %d", width)
	}
}

func (c *Cursor) ReadU8() (uint8, error) {
	v, err := c.ReadFixed(1, false)
	return uint8(v), err
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadFixed(1, true)
	return int8(v), err
}

func (c *Cursor) ReadU16() (uint16, error) {
	v, err := c.ReadFixed(2, false)
	return uint16(v), err
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadFixed(2, true)
	return int16(v), err
}

func (c *Cursor) ReadU32() (uint32, error) {
	v, err := c.ReadFixed(4, false)
	return uint32(v), err
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadFixed(4, true)
	return int32(v), err
}

func (c *Cursor) ReadU64() (uint64, error) {
	return c.ReadFixed(8, false)
}

func (c *Cursor) ReadI64() (int64, error) {
	v, err := c.ReadFixed(8, true)
	return int64(v), err
}

// ReadString reads a u16 length followed by that many bytes. The last
// byte must be NUL and is dropped; the rest must be ASCII.
func (c *Cursor) ReadString() (string, error) {
	l, err := c.ReadU16()
	if err != nil {
		return "", err
	}
	if l == 0 {
		return "", fmt.Errorf("zero length: %w", ErrMalformedString)
	}
	b := make([]byte, l)
	if err := c.fill(b); err != nil {
		return "", err
	}
	if b[l-1] != 0 {
		return "", fmt.Errorf("missing NUL terminator: %w", ErrMalformedString)
	}
	b = b[:l-1]
	for _, ch := range b {
		if ch > 0x7f {
			return "", fmt.Errorf("non-ASCII byte 0x%02x: %w", ch, ErrMalformedString)
		}
	}
	return string(b), nil
}

// ReadValue decodes one value of the given kind
func (c *Cursor) ReadValue(kind model.ValueKind) (model.Value, error) {
	if kind == model.KindString {
		s, err := c.ReadString()
		if err != nil {
			return model.Value{}, err
		}
		return model.StringValue(s), nil
	}

	width, signed := kind.Width()
	if width == 0 {
		return model.Value{}, fmt.Errorf("value kind %s: %w", kind, ErrUnsupportedSchema)
	}
	v, err := c.ReadFixed(width, signed)
	if err != nil {
		return model.Value{}, err
	}
	if signed {
		return model.IntValue(kind, int64(v)), nil
	}
	return model.UintValue(kind, v), nil
}
