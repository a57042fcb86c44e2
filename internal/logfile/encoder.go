package logfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/rusenback/ssreport/internal/model"
)

// Encoder writes the recorder's log format. Write the header once, then
// any number of records.
type Encoder struct {
	w       *bufio.Writer
	schemas map[string]*model.RecordSchema
	started bool
}

// NewEncoder returns an encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), schemas: make(map[string]*model.RecordSchema)}
}

// WriteHeader writes the header and the schema catalog
func (e *Encoder) WriteHeader(h model.Header, schemas []model.RecordSchema) error {
	if e.started {
		return fmt.Errorf("header already written")
	}
	if len(schemas) > math.MaxUint8 {
		return fmt.Errorf("%d schemas, at most %d allowed", len(schemas), math.MaxUint8)
	}
	e.started = true

	var compressed uint8
	if h.Compressed {
		compressed = 1
	}
	e.putU8(h.Version)
	e.putU8(compressed)
	e.putU8(uint8(len(schemas)))

	for i := range schemas {
		s := schemas[i]
		e.putU8(s.Tag)
		if err := e.putString(s.Name); err != nil {
			return err
		}
		e.putFixed(4, uint64(len(s.Fields)))
		for _, f := range s.Fields {
			if err := e.putString(f.Name); err != nil {
				return err
			}
			e.putU8(uint8(model.FieldRawValue))
			e.putU8(uint8(f.Kind))
		}
		e.schemas[s.Name] = &s
	}
	return nil
}

// WriteRecord writes one record of the named kind. Values must be given
// in field order and match the field kinds.
func (e *Encoder) WriteRecord(kind string, values ...model.Value) error {
	s, ok := e.schemas[kind]
	if !ok {
		return fmt.Errorf("%s: %w", kind, ErrUnknownRecordType)
	}
	if _, err := model.NewRecord(s, values); err != nil {
		return err
	}

	e.putU8(s.Tag)
	for _, v := range values {
		if v.IsString() {
			if err := e.putString(v.Text()); err != nil {
				return err
			}
			continue
		}
		width, _ := v.Kind.Width()
		e.putFixed(width, v.Uint64())
	}
	return nil
}

// WriteRaw appends raw bytes, e.g. to build truncated fixtures
func (e *Encoder) WriteRaw(p []byte) error {
	_, err := e.w.Write(p)
	return err
}

// Flush writes buffered data to the underlying writer
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

func (e *Encoder) putU8(v uint8) {
	e.w.WriteByte(v)
}

func (e *Encoder) putFixed(width int, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.w.Write(b[8-width:])
}

func (e *Encoder) putString(s string) error {
	if len(s)+1 > math.MaxUint16 {
		return fmt.Errorf("string of %d bytes too long", len(s))
	}
	e.putFixed(2, uint64(len(s)+1))
	e.w.WriteString(s)
	e.w.WriteByte(0)
	return nil
}
