package definition

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/apache/iceberg-go"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// primitiveTypes maps Iceberg primitive type names to iceberg-go types.
var primitiveTypes = map[string]iceberg.Type{
	"boolean":     iceberg.PrimitiveTypes.Bool,
	"int":         iceberg.PrimitiveTypes.Int32,
	"long":        iceberg.PrimitiveTypes.Int64,
	"float":       iceberg.PrimitiveTypes.Float32,
	"double":      iceberg.PrimitiveTypes.Float64,
	"date":        iceberg.PrimitiveTypes.Date,
	"time":        iceberg.PrimitiveTypes.Time,
	"timestamp":   iceberg.PrimitiveTypes.Timestamp,
	"timestamptz": iceberg.PrimitiveTypes.TimestampTz,
	"string":      iceberg.PrimitiveTypes.String,
	"uuid":        iceberg.PrimitiveTypes.UUID,
	"binary":      iceberg.PrimitiveTypes.Binary,
}

var (
	decimalPattern = regexp.MustCompile(`^decimal\(\s*(\d+)\s*,\s*(\d+)\s*\)$`)
	fixedPattern   = regexp.MustCompile(`^fixed\[\s*(\d+)\s*\]$`)
)

// maxDecimalPrecision is the Iceberg limit for decimal precision.
const maxDecimalPrecision = 38

// IcebergType resolves a lowercase type name from a definition document to
// its Iceberg primitive type.
func IcebergType(name string) (iceberg.Type, error) {
	if t, ok := primitiveTypes[name]; ok {
		return t, nil
	}
	if m := decimalPattern.FindStringSubmatch(name); m != nil {
		precision, _ := strconv.Atoi(m[1])
		scale, _ := strconv.Atoi(m[2])
		if precision < 1 || precision > maxDecimalPrecision {
			return nil, fmt.Errorf("decimal precision %d out of range [1, %d]", precision, maxDecimalPrecision)
		}
		if scale > precision {
			return nil, fmt.Errorf("decimal scale %d exceeds precision %d", scale, precision)
		}
		return iceberg.DecimalTypeOf(precision, scale), nil
	}
	if m := fixedPattern.FindStringSubmatch(name); m != nil {
		length, _ := strconv.Atoi(m[1])
		if length < 1 {
			return nil, fmt.Errorf("fixed length must be positive")
		}
		return iceberg.FixedTypeOf(length), nil
	}
	return nil, fmt.Errorf("unsupported type %q", name)
}

// IcebergSchema builds the Iceberg schema declared by def. Field IDs are
// assigned from 1 in declaration order.
func IcebergSchema(def types.TableDefinition) (*iceberg.Schema, error) {
	fields := make([]iceberg.NestedField, 0, len(def.Fields))
	for i, f := range def.Fields {
		t, err := IcebergType(f.Type)
		if err != nil {
			return nil, &types.ValidationError{Path: def.Path, Field: f.Name, Reason: err.Error()}
		}
		fields = append(fields, iceberg.NestedField{
			ID:       i + 1,
			Name:     f.Name,
			Type:     t,
			Required: f.Required,
		})
	}
	return iceberg.NewSchema(0, fields...), nil
}
