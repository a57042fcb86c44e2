package logfile

import (
	"fmt"
	"sort"

	"github.com/rusenback/ssreport/internal/model"
)

// Catalog maps record tags to schemas. It is read once from the file
// header and never modified afterwards.
type Catalog struct {
	header  model.Header
	byTag   map[uint8]*model.RecordSchema
	byName  map[string]*model.RecordSchema
	ordered []*model.RecordSchema
}

// BuildCatalog reads the header and the schema descriptions
func BuildCatalog(c *Cursor) (*Catalog, error) {
	version, err := c.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	compressed, err := c.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("read compressed flag: %w", err)
	}
	count, err := c.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("read schema count: %w", err)
	}

	cat := &Catalog{
		header: model.Header{Version: version, Compressed: compressed != 0},
		byTag:  make(map[uint8]*model.RecordSchema, count),
		byName: make(map[string]*model.RecordSchema, count),
	}

	for i := 0; i < int(count); i++ {
		schema, err := readSchema(c)
		if err != nil {
			return nil, fmt.Errorf("schema %d: %w", i, err)
		}
		if prev, ok := cat.byTag[schema.Tag]; ok {
			return nil, fmt.Errorf("tag %d used by %q and %q: %w",
				schema.Tag, prev.Name, schema.Name, ErrDuplicateRecordType)
		}
		if prev, ok := cat.byName[schema.Name]; ok {
			return nil, fmt.Errorf("name %q used by tags %d and %d: %w",
				schema.Name, prev.Tag, schema.Tag, ErrDuplicateRecordType)
		}
		cat.byTag[schema.Tag] = schema
		cat.byName[schema.Name] = schema
		cat.ordered = append(cat.ordered, schema)
	}

	sort.Slice(cat.ordered, func(i, j int) bool {
		return cat.ordered[i].Tag < cat.ordered[j].Tag
	})
	return cat, nil
}

func readSchema(c *Cursor) (*model.RecordSchema, error) {
	tag, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	name, err := c.ReadString()
	if err != nil {
		return nil, fmt.Errorf("tag %d name: %w", tag, err)
	}
	fieldCount, err := c.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%s field count: %w", name, err)
	}

	schema := &model.RecordSchema{Tag: tag, Name: name}
	for i := uint32(0); i < fieldCount; i++ {
		f, err := readField(c)
		if err != nil {
			return nil, fmt.Errorf("%s field %d: %w", name, i, err)
		}
		schema.Fields = append(schema.Fields, f)
	}
	return schema, nil
}

func readField(c *Cursor) (model.FieldDescriptor, error) {
	name, err := c.ReadString()
	if err != nil {
		return model.FieldDescriptor{}, err
	}
	kind, err := c.ReadU8()
	if err != nil {
		return model.FieldDescriptor{}, err
	}

	switch fk := model.FieldKind(kind); fk {
	case model.FieldRawValue:
		vk, err := c.ReadU8()
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		valueKind := model.ValueKind(vk)
		if !valueKind.Valid() {
			return model.FieldDescriptor{}, fmt.Errorf("%s: %s: %w", name, valueKind, ErrUnsupportedSchema)
		}
		return model.FieldDescriptor{Name: name, Kind: valueKind}, nil
	default:
		return model.FieldDescriptor{}, fmt.Errorf("%s: %s entries: %w", name, fk, ErrUnsupportedSchema)
	}
}

// Header returns the file header
func (c *Catalog) Header() model.Header {
	return c.header
}

// Lookup resolves a record tag
func (c *Catalog) Lookup(tag uint8) (*model.RecordSchema, error) {
	s, ok := c.byTag[tag]
	if !ok {
		return nil, ErrUnknownRecordType
	}
	return s, nil
}

// ByName finds a schema by record-kind name
func (c *Catalog) ByName(name string) (*model.RecordSchema, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Schemas returns copies of all schemas, ordered by tag
func (c *Catalog) Schemas() []model.RecordSchema {
	out := make([]model.RecordSchema, 0, len(c.ordered))
	for _, s := range c.ordered {
		cp := *s
		cp.Fields = append([]model.FieldDescriptor(nil), s.Fields...)
		out = append(out, cp)
	}
	return out
}

// Len returns the number of schemas
func (c *Catalog) Len() int {
	return len(c.ordered)
}
