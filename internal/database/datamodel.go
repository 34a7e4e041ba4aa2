package database

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stoewer/go-strcase"
)

// Table is one introspected table (or Mongo collection).
type Table struct {
	Name    string
	Columns []Column
}

// Column is one introspected column. DataType is the engine's native type
// name, lowercased.
type Column struct {
	Name      string
	DataType  string
	Nullable  bool
	IsPrimary bool
}

// Scalar type names used in the generated datamodel.
const (
	scalarString   = "String"
	scalarInt      = "Int"
	scalarFloat    = "Float"
	scalarBoolean  = "Boolean"
	scalarDateTime = "DateTime"
	scalarJSON     = "Json"
	scalarID       = "ID"
)

// sqlScalars maps native column types to datamodel scalars. The key set is
// closed; unknown types fall back to String.
var sqlScalars = map[string]string{
	// character
	"character varying": scalarString, "varchar": scalarString, "char": scalarString,
	"character": scalarString, "text": scalarString, "tinytext": scalarString,
	"mediumtext": scalarString, "longtext": scalarString, "uuid": scalarString,
	// integer
	"integer": scalarInt, "int": scalarInt, "smallint": scalarInt,
	"bigint": scalarInt, "tinyint": scalarInt, "mediumint": scalarInt, "serial": scalarInt,
	// floating point
	"numeric": scalarFloat, "decimal": scalarFloat, "real": scalarFloat,
	"double precision": scalarFloat, "float": scalarFloat, "double": scalarFloat,
	// boolean
	"boolean": scalarBoolean, "bool": scalarBoolean,
	// temporal
	"timestamp": scalarDateTime, "timestamp with time zone": scalarDateTime,
	"timestamp without time zone": scalarDateTime, "timestamptz": scalarDateTime,
	"date": scalarDateTime, "datetime": scalarDateTime, "time": scalarDateTime,
	// structured
	"json": scalarJSON, "jsonb": scalarJSON,
}

// ScalarForSQLType returns the datamodel scalar for a native SQL type.
func ScalarForSQLType(dataType string) string {
	t := strings.ToLower(strings.TrimSpace(dataType))
	// Strip length/precision suffixes like varchar(255).
	if i := strings.IndexByte(t, '('); i > 0 {
		t = t[:i]
	}
	if scalar, ok := sqlScalars[t]; ok {
		return scalar
	}
	return scalarString
}

// RenderDatamodel renders introspected tables into declarative datamodel
// text. Types are emitted in table-name order so output is deterministic.
func RenderDatamodel(tables []Table) string {
	sorted := make([]Table, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for i, table := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "type %s @db(name: %q) {\n", typeName(table.Name), table.Name)
		for _, col := range table.Columns {
			b.WriteString("  ")
			b.WriteString(fieldLine(col))
			b.WriteString("\n")
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func fieldLine(col Column) string {
	if col.IsPrimary {
		return fmt.Sprintf("%s: %s! @id", fieldName(col.Name), scalarID)
	}
	scalar := ScalarForSQLType(col.DataType)
	if col.Nullable {
		return fmt.Sprintf("%s: %s", fieldName(col.Name), scalar)
	}
	return fmt.Sprintf("%s: %s!", fieldName(col.Name), scalar)
}

func typeName(table string) string {
	name := strcase.UpperCamelCase(table)
	if name == "" {
		return "Unnamed"
	}
	return name
}

func fieldName(column string) string {
	name := strcase.LowerCamelCase(column)
	if name == "" {
		return "unnamed"
	}
	return name
}
