// internal/model/schema.go
package model

import "fmt"

// ValueKind identifies the wire encoding of a leaf field
type ValueKind uint8

const (
	KindU8 ValueKind = iota
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindString
)

var valueKindNames = [...]string{
	KindU8:     "U8",
	KindI8:     "I8",
	KindU16:    "U16",
	KindI16:    "I16",
	KindU32:    "U32",
	KindI32:    "I32",
	KindU64:    "U64",
	KindI64:    "I64",
	KindString: "STR",
}

func (k ValueKind) String() string {
	if k.Valid() {
		return valueKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the known value kinds
func (k ValueKind) Valid() bool {
	return k <= KindString
}

// Width returns the encoded size in bytes of a fixed-width kind and
// whether it is signed. Strings return a width of 0.
func (k ValueKind) Width() (width int, signed bool) {
	switch k {
	case KindU8:
		return 1, false
	case KindI8:
		return 1, true
	case KindU16:
		return 2, false
	case KindI16:
		return 2, true
	case KindU32:
		return 4, false
	case KindI32:
		return 4, true
	case KindU64:
		return 8, false
	case KindI64:
		return 8, true
	default:
		return 0, false
	}
}

// FieldKind is the entry type byte written before each field description
type FieldKind uint8

const (
	FieldRawValue FieldKind = iota
	FieldStruct
	FieldList
)

func (k FieldKind) String() string {
	switch k {
	case FieldRawValue:
		return "raw"
	case FieldStruct:
		return "struct"
	case FieldList:
		return "list"
	default:
		return fmt.Sprintf("fieldkind(%d)", uint8(k))
	}
}

// FieldDescriptor describes one leaf field of a record
type FieldDescriptor struct {
	Name string
	Kind ValueKind
}

// RecordSchema is one entry of the catalog embedded in the log header
type RecordSchema struct {
	Tag    uint8
	Name   string
	Fields []FieldDescriptor
}

// FieldIndex returns the position of the named field, or -1
func (s *RecordSchema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Header holds the leading bytes of a log file
type Header struct {
	Version uint8
	// Compressed is informational only, payloads are never decompressed.
	Compressed bool
}
