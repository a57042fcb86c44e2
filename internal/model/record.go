package model

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnknownField is returned when a record has no field with the requested name
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldKind is returned when a field is accessed as the wrong kind
	ErrFieldKind = errors.New("field kind mismatch")
	// ErrSchemaMismatch is returned when values do not match a schema's field list
	ErrSchemaMismatch = errors.New("values do not match schema")
)

// Value is a single decoded field value
type Value struct {
	Kind ValueKind
	i    int64
	u    uint64
	s    string
}

// IntValue builds a signed value of the given kind
func IntValue(kind ValueKind, v int64) Value {
	return Value{Kind: kind, i: v}
}

// UintValue builds an unsigned value of the given kind
func UintValue(kind ValueKind, v uint64) Value {
	return Value{Kind: kind, u: v}
}

// StringValue builds a STR value
func StringValue(s string) Value {
	return Value{Kind: KindString, s: s}
}

// IsString reports whether the value holds text
func (v Value) IsString() bool {
	return v.Kind == KindString
}

// IsSigned reports whether the value holds a signed integer
func (v Value) IsSigned() bool {
	_, signed := v.Kind.Width()
	return signed
}

// Int64 returns the integer payload. Unsigned values above MaxInt64 wrap.
func (v Value) Int64() int64 {
	if v.IsSigned() {
		return v.i
	}
	return int64(v.u)
}

// Uint64 returns the unsigned payload; signed values are converted as-is
func (v Value) Uint64() uint64 {
	if v.IsSigned() {
		return uint64(v.i)
	}
	return v.u
}

// Float64 returns the integer payload as a float
func (v Value) Float64() float64 {
	if v.IsSigned() {
		return float64(v.i)
	}
	return float64(v.u)
}

// Text returns the string payload
func (v Value) Text() string {
	return v.s
}

func (v Value) String() string {
	switch {
	case v.IsString():
		return v.s
	case v.IsSigned():
		return strconv.FormatInt(v.i, 10)
	default:
		return strconv.FormatUint(v.u, 10)
	}
}

// Record is one decoded record. Its values always line up with the
// fields of its schema.
type Record struct {
	schema *RecordSchema
	values []Value
}

// NewRecord validates values against schema and builds a record
func NewRecord(schema *RecordSchema, values []Value) (Record, error) {
	if len(values) != len(schema.Fields) {
		return Record{}, fmt.Errorf("%s: %d values for %d fields: %w",
			schema.Name, len(values), len(schema.Fields), ErrSchemaMismatch)
	}
	for i, f := range schema.Fields {
		if values[i].Kind != f.Kind {
			return Record{}, fmt.Errorf("%s.%s: got %s, want %s: %w",
				schema.Name, f.Name, values[i].Kind, f.Kind, ErrSchemaMismatch)
		}
	}
	return Record{schema: schema, values: values}, nil
}

// Schema returns the schema the record was decoded with
func (r Record) Schema() *RecordSchema {
	return r.schema
}

// Kind returns the record-kind name, e.g. "processstats"
func (r Record) Kind() string {
	if r.schema == nil {
		return ""
	}
	return r.schema.Name
}

// Values returns the field values in declaration order
func (r Record) Values() []Value {
	return r.values
}

// Field looks a value up by field name
func (r Record) Field(name string) (Value, error) {
	if r.schema != nil {
		if i := r.schema.FieldIndex(name); i >= 0 {
			return r.values[i], nil
		}
	}
	return Value{}, fmt.Errorf("%s.%s: %w", r.Kind(), name, ErrUnknownField)
}

// Int returns an integer field
func (r Record) Int(name string) (int64, error) {
	v, err := r.Field(name)
	if err != nil {
		return 0, err
	}
	if v.IsString() {
		return 0, fmt.Errorf("%s.%s is %s: %w", r.Kind(), name, v.Kind, ErrFieldKind)
	}
	return v.Int64(), nil
}

// Float returns an integer field converted to float64
func (r Record) Float(name string) (float64, error) {
	v, err := r.Field(name)
	if err != nil {
		return 0, err
	}
	if v.IsString() {
		return 0, fmt.Errorf("%s.%s is %s: %w", r.Kind(), name, v.Kind, ErrFieldKind)
	}
	return v.Float64(), nil
}

// Text returns a string field
func (r Record) Text(name string) (string, error) {
	v, err := r.Field(name)
	if err != nil {
		return "", err
	}
	if !v.IsString() {
		return "", fmt.Errorf("%s.%s is %s: %w", r.Kind(), name, v.Kind, ErrFieldKind)
	}
	return v.Text(), nil
}
