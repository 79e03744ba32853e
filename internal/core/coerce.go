package core

// Coerce converts every raw row to a typed row using schema. It never fails:
// a cell that does not fit its column degrades to Null or InvalidNumber.
func Coerce(rows []RawRow, schema Schema) []TypedRow {
	typed := make([]TypedRow, len(rows))
	for i, row := range rows {
		typed[i] = CoerceRow(row, schema)
	}
	return typed
}

// CoerceRow converts a single raw row. A header missing from the row is
// treated as an empty cell.
func CoerceRow(row RawRow, schema Schema) TypedRow {
	out := make(TypedRow, len(schema))
	for _, col := range schema {
		out[col.Name] = CoerceCell(row[col.Name], col.Type)
	}
	return out
}

// CoerceCell converts one raw cell to the given column type.
//
//	numeric: blank -> Null, parsed -> Number, otherwise InvalidNumber
//	date:    parsed -> Date, otherwise (blank included) Null
//	text:    Text, unchanged; "" stays Text, never Null
func CoerceCell(raw string, t ColumnType) Value {
	switch t {
	case TypeNumeric:
		if isBlank(raw) {
			return NullValue(raw)
		}
		if n, ok := ParseNumber(raw); ok {
			return NumberValue(raw, n)
		}
		return InvalidNumberValue(raw)

	case TypeDate:
		if d, ok := ParseDate(raw); ok {
			return DateValue(raw, d)
		}
		return NullValue(raw)

	default:
		return TextValue(raw)
	}
}
