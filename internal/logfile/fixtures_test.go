package logfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rusenback/ssreport/internal/model"
)

var allKindsSchema = model.RecordSchema{
	Tag:  7,
	Name: "allkinds",
	Fields: []model.FieldDescriptor{
		{Name: "u8", Kind: model.KindU8},
		{Name: "i8", Kind: model.KindI8},
		{Name: "u16", Kind: model.KindU16},
		{Name: "i16", Kind: model.KindI16},
		{Name: "u32", Kind: model.KindU32},
		{Name: "i32", Kind: model.KindI32},
		{Name: "u64", Kind: model.KindU64},
		{Name: "i64", Kind: model.KindI64},
		{Name: "str", Kind: model.KindString},
	},
}

var configSchema = model.RecordSchema{
	Tag:  1,
	Name: model.KindSystemConfig,
	Fields: []model.FieldDescriptor{
		{Name: "clktck", Kind: model.KindU32},
		{Name: "pagesize", Kind: model.KindU32},
	},
}

func allKindsValues(i int) []model.Value {
	n := int64(i)
	return []model.Value{
		model.UintValue(model.KindU8, uint64(200+i)),
		model.IntValue(model.KindI8, -100-n),
		model.UintValue(model.KindU16, uint64(60000+i)),
		model.IntValue(model.KindI16, -30000-n),
		model.UintValue(model.KindU32, uint64(4_000_000_000+i)),
		model.IntValue(model.KindI32, -2_000_000_000-n),
		model.UintValue(model.KindU64, uint64(1<<63)+uint64(i)),
		model.IntValue(model.KindI64, -(1<<62)-n),
		model.StringValue("rec-" + string(rune('a'+i))),
	}
}

// encodeLog writes a header with schemas and lets fn append records
func encodeLog(t *testing.T, schemas []model.RecordSchema, fn func(e *Encoder)) []byte {
	t.Helper()

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteHeader(model.Header{Version: 1}, schemas))
	if fn != nil {
		fn(enc)
	}
	require.NoError(t, enc.Flush())
	return buf.Bytes()
}
