package logfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/rusenback/ssreport/internal/model"
)

// ResultKind tells which variant a Result holds
type ResultKind int

const (
	ResultRecord ResultKind = iota
	ResultEnd
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultRecord:
		return "record"
	case ResultEnd:
		return "end"
	case ResultError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one decode step: a record, the clean end of
// the stream, or a fatal error.
type Result struct {
	Kind   ResultKind
	Record model.Record
	Err    error
}

// Decoder produces the records of a log file in file order. It is not
// restartable: once End or an error is returned, every later call
// returns the same result.
type Decoder struct {
	cursor  *Cursor
	catalog *Catalog
	done    *Result
	count   int
}

// NewDecoder reads the header and catalog from r
func NewDecoder(r io.Reader) (*Decoder, error) {
	c := NewCursor(r)
	cat, err := BuildCatalog(c)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return &Decoder{cursor: c, catalog: cat}, nil
}

// Catalog returns the schema catalog read from the header
func (d *Decoder) Catalog() *Catalog {
	return d.catalog
}

// Count returns the number of records decoded so far
func (d *Decoder) Count() int {
	return d.count
}

// Next decodes one record
func (d *Decoder) Next() Result {
	if d.done != nil {
		return *d.done
	}

	res := d.decode()
	if res.Kind != ResultRecord {
		d.done = &res
	} else {
		d.count++
	}
	return res
}

func (d *Decoder) decode() Result {
	start := d.cursor.Offset()
	tag, err := d.cursor.ReadU8()
	if err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return Result{Kind: ResultEnd}
		}
		return errResult(&DecodeError{Offset: start, Err: err})
	}

	schema, err := d.catalog.Lookup(tag)
	if err != nil {
		return errResult(&DecodeError{Offset: start, Tag: tag, Err: err})
	}

	values := make([]model.Value, len(schema.Fields))
	for i, f := range schema.Fields {
		v, err := d.cursor.ReadValue(f.Kind)
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				err = truncated{err: err}
			}
			return errResult(&DecodeError{
				Offset: start,
				Tag:    tag,
				Schema: schema.Name,
				Field:  f.Name,
				Err:    err,
			})
		}
		values[i] = v
	}

	rec, err := model.NewRecord(schema, values)
	if err != nil {
		return errResult(&DecodeError{Offset: start, Tag: tag, Schema: schema.Name, Err: err})
	}
	return Result{Kind: ResultRecord, Record: rec}
}

func errResult(err error) Result {
	return Result{Kind: ResultError, Err: err}
}
