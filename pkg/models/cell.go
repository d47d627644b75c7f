package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// CellValue is a tagged variant over the handful of shapes a driver row value
// can take: null, int, float, string, bytes, or datetime. Column min/max
// literals and FD sample-violation values all flow through this type so the
// writer can serialize them to their natural JSON form regardless of which
// SQL Server type produced them.
type CellValue struct {
	kind string // "null", "int", "float", "string", "bytes", "datetime"
	i    int64
	f    float64
	s    string
	b    []byte
	t    time.Time
}

// NullCell is the zero CellValue, representing an absent min/max or an
// unscannable value.
var NullCell = CellValue{kind: "null"}

// NewCellValue converts a value scanned from a database/sql row into a
// CellValue. Unrecognized types are coerced to their string form rather than
// dropped, so a value is never silently lost.
func NewCellValue(v any) CellValue {
	switch val := v.(type) {
	case nil:
		return NullCell
	case int64:
		return CellValue{kind: "int", i: val}
	case int:
		return CellValue{kind: "int", i: int64(val)}
	case float64:
		return CellValue{kind: "float", f: val}
	case float32:
		return CellValue{kind: "float", f: float64(val)}
	case bool:
		if val {
			return CellValue{kind: "int", i: 1}
		}
		return CellValue{kind: "int", i: 0}
	case string:
		return CellValue{kind: "string", s: val}
	case []byte:
		return CellValue{kind: "bytes", b: val}
	case time.Time:
		return CellValue{kind: "datetime", t: val}
	default:
		return CellValue{kind: "string", s: fmt.Sprintf("%v", val)}
	}
}

// IsNull reports whether the cell holds no value.
func (c CellValue) IsNull() bool {
	return c.kind == "" || c.kind == "null"
}

// String renders the cell's value for display and for building sample
// violation evidence strings; empty for a null cell.
func (c CellValue) String() string {
	switch c.kind {
	case "int":
		return fmt.Sprintf("%d", c.i)
	case "float":
		return fmt.Sprintf("%g", c.f)
	case "string":
		return c.s
	case "bytes":
		return base64.StdEncoding.EncodeToString(c.b)
	case "datetime":
		return c.t.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// MarshalJSON renders the cell in its natural JSON form: numbers as numbers,
// datetimes as ISO-8601 strings, bytes as base64 strings, null as JSON null.
func (c CellValue) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case "int":
		return json.Marshal(c.i)
	case "float":
		return json.Marshal(c.f)
	case "string":
		return json.Marshal(c.s)
	case "bytes":
		return json.Marshal(base64.StdEncoding.EncodeToString(c.b))
	case "datetime":
		return json.Marshal(c.t.Format(time.RFC3339Nano))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON restores a CellValue from its natural JSON form. Since the
// wire format loses the int/float/datetime distinction for strings, any JSON
// string round-trips as kind "string"; this is acceptable because CellValue
// is write-mostly (produced by the pipeline, consumed by the writer) and not
// re-parsed for further computation.
func (c *CellValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = NewCellValue(raw)
	if raw == nil {
		*c = NullCell
	}
	return nil
}
