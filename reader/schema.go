package reader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/retailq/table"
)

// SchemaInfo describes one column of a table source.
type SchemaInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type,omitempty"`
	LogicalType  string `json:"logical_type,omitempty"`
	Required     bool   `json:"required"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
}

// Describe reports the columns of the source at path. Parquet files report
// their declared schema; other formats are loaded and their column types
// inferred from the values. Glob patterns describe the first match.
func Describe(ctx context.Context, path string) ([]SchemaInfo, error) {
	if isGlob(path) {
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern: %s", path)
		}
		path = matches[0]
	}

	if DetectFormat(path) == FormatParquet {
		return ExtractSchemaInfo(path)
	}

	t, err := ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return InferSchema(t), nil
}

// ExtractSchemaInfo reads the declared schema of a parquet file. Leaf
// columns of nested groups use dot notation (e.g. "customer.city"); names
// are canonical, matching what ReadParquet produces.
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	r, err := NewParquetReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	var infos []SchemaInfo
	for _, field := range r.Schema().Fields() {
		infos = appendFieldInfo(infos, field, "", false)
	}
	return infos, nil
}

// appendFieldInfo walks a field, emitting one entry per leaf. Repetition is
// inherited from the parent group.
func appendFieldInfo(infos []SchemaInfo, field parquet.Field, prefix string, parentRepeated bool) []SchemaInfo {
	name := table.CanonicalName(field.Name())
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		for _, child := range children {
			infos = appendFieldInfo(infos, child, name, repeated)
		}
		return infos
	}

	info := SchemaInfo{
		Name:     name,
		Type:     "GROUP",
		Required: field.Required(),
		Optional: field.Optional(),
		Repeated: repeated,
	}
	if typ := field.Type(); typ != nil {
		info.PhysicalType = physicalTypeName(typ.Kind(), false)
		info.Type = physicalTypeName(typ.Kind(), true)
		if lt := typ.LogicalType(); lt != nil {
			info.LogicalType = lt.String()
			if friendly, ok := logicalTypeNames[info.LogicalType]; ok {
				info.Type = friendly
			}
		}
	}
	return append(infos, info)
}

// logicalTypeNames maps parquet logical types to the names shown to users.
// INT falls through to the physical width.
var logicalTypeNames = map[string]string{
	"STRING":    "STRING",
	"UTF8":      "STRING",
	"ENUM":      "ENUM",
	"UUID":      "UUID",
	"DATE":      "DATE",
	"TIME":      "TIME",
	"TIMESTAMP": "TIMESTAMP",
	"DECIMAL":   "DECIMAL",
	"JSON":      "JSON",
	"BSON":      "BSON",
}

// physicalTypeName names a parquet kind. friendly spells the float kinds as
// FLOAT32/FLOAT64.
func physicalTypeName(kind parquet.Kind, friendly bool) string {
	switch kind {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		if friendly {
			return "FLOAT32"
		}
		return "FLOAT"
	case parquet.Double:
		if friendly {
			return "FLOAT64"
		}
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

// InferSchema derives column types from the values of a loaded table. A
// column whose values disagree is MIXED; one with no values at all is NULL.
// Optional is set when some row lacks the column or holds nil.
func InferSchema(t *table.Table) []SchemaInfo {
	infos := make([]SchemaInfo, 0, len(t.Columns))
	for _, col := range t.Columns {
		typ := ""
		optional := false
		for _, row := range t.Rows {
			v, ok := row[col]
			if !ok || v == nil {
				optional = true
				continue
			}
			switch vt := valueType(v); {
			case typ == "":
				typ = vt
			case typ != vt:
				typ = widen(typ, vt)
			}
		}
		if typ == "" {
			typ = "NULL"
		}
		infos = append(infos, SchemaInfo{
			Name:     col,
			Type:     typ,
			Required: !optional,
			Optional: optional,
		})
	}
	return infos
}

func valueType(v interface{}) string {
	switch v.(type) {
	case bool:
		return "BOOLEAN"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "INT64"
	case float32, float64:
		return "FLOAT64"
	case string:
		return "STRING"
	default:
		return "MIXED"
	}
}

// widen merges two disagreeing value types; integers and floats make a
// FLOAT64 column, anything else is MIXED
func widen(a, b string) string {
	if (a == "INT64" && b == "FLOAT64") || (a == "FLOAT64" && b == "INT64") {
		return "FLOAT64"
	}
	return "MIXED"
}
