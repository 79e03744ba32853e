package core

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreRows(t *testing.T) ([]TypedRow, Schema) {
	t.Helper()
	table, err := ParseString("id,score,city,when\n" +
		"1,10,A,2024-01-01\n" +
		"2,20,B,2024-02-01\n" +
		"3,30,C,2024-03-01\n" +
		"4,40,A,2024-04-01\n" +
		"5,50,B,2024-05-01\n")
	require.NoError(t, err)
	schema := InferSchema(table.Headers, table.Rows)
	return Coerce(table.Rows, schema), schema
}

func ids(rows []TypedRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r["id"].Raw
	}
	return out
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEvaluate(t *testing.T) {
	rows, schema := scoreRows(t)

	tests := []struct {
		name string
		spec FilterSpec
		want []string
	}{
		{"no filters", nil, []string{"1", "2", "3", "4", "5"}},
		{"numeric range", FilterSpec{"score": NumericRange{Min: 20, Max: 40}}, []string{"2", "3", "4"}},
		{"numeric open max", FilterSpec{"score": NumericRange{Min: 35, Max: math.Inf(1)}}, []string{"4", "5"}},
		{"text subset", FilterSpec{"city": NewTextFilter("A", "C")}, []string{"1", "3", "4"}},
		{"text empty passes all", FilterSpec{"city": NewTextFilter()}, []string{"1", "2", "3", "4", "5"}},
		{"date from only", FilterSpec{"when": DateRange{From: datePtr(2024, 4, 1)}}, []string{"4", "5"}},
		{"date window", FilterSpec{"when": DateRange{From: datePtr(2024, 2, 1), To: datePtr(2024, 3, 15)}}, []string{"2", "3"}},
		{"date without from is vacuous", FilterSpec{"when": DateRange{To: datePtr(2024, 1, 1)}}, []string{"1", "2", "3", "4", "5"}},
		{
			name: "conjunction",
			spec: FilterSpec{
				"score": NumericRange{Min: 10, Max: 40},
				"city":  NewTextFilter("A"),
			},
			want: []string{"1", "4"},
		},
		{"unknown column ignored", FilterSpec{"nope": NewTextFilter("x")}, []string{"1", "2", "3", "4", "5"}},
		{"mismatched kind ignored", FilterSpec{"score": NewTextFilter("10")}, []string{"1", "2", "3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(rows, schema, tt.spec)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestEvaluate_RangeAndSentinel(t *testing.T) {
	schema := Schema{{Name: "id", Type: TypeText}, {Name: "n", Type: TypeNumeric}}
	rows := Coerce([]RawRow{
		{"id": "1", "n": "5"},
		{"id": "2", "n": ""},
		{"id": "3", "n": "oops"},
		{"id": "4", "n": "15"},
	}, schema)

	// A range that covers the observed [5, 15] imposes nothing, so missing
	// and invalid cells still pass.
	got := Evaluate(rows, schema, FilterSpec{"n": NumericRange{Min: 0, Max: 100}})
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(got))

	got = Evaluate(rows, schema, FilterSpec{"n": NumericRange{Min: 5, Max: 15}})
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(got))

	// A narrowing range drops nulls and the sentinel.
	got = Evaluate(rows, schema, FilterSpec{"n": NumericRange{Min: 6, Max: 100}})
	assert.Equal(t, []string{"4"}, ids(got))
}

func TestEvaluate_NoValidNumbersIsVacuous(t *testing.T) {
	schema := Schema{{Name: "id", Type: TypeText}, {Name: "n", Type: TypeNumeric}}
	rows := Coerce([]RawRow{{"id": "1", "n": ""}, {"id": "2", "n": "x"}}, schema)

	got := Evaluate(rows, schema, FilterSpec{"n": NumericRange{Min: 50, Max: 60}})
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestEvaluate_Monotone(t *testing.T) {
	rows, schema := scoreRows(t)

	loose := FilterSpec{"score": NumericRange{Min: 10, Max: 45}}
	tight := FilterSpec{"score": NumericRange{Min: 10, Max: 45}, "city": NewTextFilter("B")}

	looseIDs := ids(Evaluate(rows, schema, loose))
	for _, id := range ids(Evaluate(rows, schema, tight)) {
		assert.Contains(t, looseIDs, id, "adding a filter never admits new rows")
	}
}

func TestEvaluate_PreservesOrderAndInput(t *testing.T) {
	rows, schema := scoreRows(t)
	before := ids(rows)

	got := Evaluate(rows, schema, FilterSpec{"city": NewTextFilter("B", "A")})
	assert.Equal(t, []string{"1", "2", "4", "5"}, ids(got))
	assert.Equal(t, before, ids(rows), "input untouched")
}

func TestTextFilter_WithoutIndex(t *testing.T) {
	f := TextFilter{Values: []string{"A"}}
	assert.True(t, f.matches(TextValue("A")))
	assert.False(t, f.matches(TextValue("B")))
}

func TestValidateFilters(t *testing.T) {
	_, schema := scoreRows(t)

	issues := ValidateFilters(schema, FilterSpec{
		"score": NewTextFilter("1"),
		"ghost": NumericRange{},
		"city":  NewTextFilter("A"),
	})

	require.Len(t, issues, 2)
	byCol := map[string]string{}
	for _, is := range issues {
		byCol[is.Column] = is.Problem
	}
	assert.Equal(t, "unknown column", byCol["ghost"])
	assert.Equal(t, "text filter on numeric column", byCol["score"])
}

func TestDecodeFilterSpec(t *testing.T) {
	_, schema := scoreRows(t)

	spec, err := DecodeFilterSpec([]byte(`{
		"score": {"min": 20},
		"city": {"values": ["A", "C"]},
		"when": {"from": "2024-02-01", "to": null},
		"ghost": {"values": ["x"]},
		"id": null
	}`), schema)
	require.NoError(t, err)
	require.Len(t, spec, 3)

	nr, ok := spec["score"].(NumericRange)
	require.True(t, ok)
	assert.Equal(t, 20.0, nr.Min)
	assert.True(t, math.IsInf(nr.Max, 1))

	tf, ok := spec["city"].(TextFilter)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "C"}, tf.Values)

	dr, ok := spec["when"].(DateRange)
	require.True(t, ok)
	require.NotNil(t, dr.From)
	assert.True(t, dr.From.Equal(*datePtr(2024, 2, 1)))
	assert.Nil(t, dr.To)
}

func TestDecodeFilterSpec_ArrayShorthand(t *testing.T) {
	_, schema := scoreRows(t)

	spec, err := DecodeFilterSpec([]byte(`{
		"score": [10, null],
		"city": ["A", "C"],
		"when": ["2024-02-01", "2024-03-01"]
	}`), schema)
	require.NoError(t, err)
	require.Len(t, spec, 3)

	nr, ok := spec["score"].(NumericRange)
	require.True(t, ok)
	assert.Equal(t, 10.0, nr.Min)
	assert.True(t, math.IsInf(nr.Max, 1))

	tf, ok := spec["city"].(TextFilter)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "C"}, tf.Values)
	assert.True(t, tf.matches(TextValue("C")))
	assert.False(t, tf.matches(TextValue("B")))

	dr, ok := spec["when"].(DateRange)
	require.True(t, ok)
	require.NotNil(t, dr.From)
	require.NotNil(t, dr.To)
	assert.True(t, dr.From.Equal(*datePtr(2024, 2, 1)))
	assert.True(t, dr.To.Equal(*datePtr(2024, 3, 1)))
}

func TestDecodeFilterSpec_Errors(t *testing.T) {
	_, schema := scoreRows(t)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"not json", `{`, "invalid filter"},
		{"not an object", `[1,2]`, "invalid filter"},
		{"wrong shape", `{"score": {"min": "low"}}`, "invalid filter"},
		{"bad date bound", `{"when": {"from": "whenever"}}`, "bad date bound"},
		{"short range pair", `{"score": [5]}`, "got 1 values"},
		{"text array of numbers", `{"city": [1, 2]}`, "invalid filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFilterSpec([]byte(tt.body), schema)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFilter)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFilterSpec_MarshalJSON(t *testing.T) {
	spec := FilterSpec{
		"score": NumericRange{Min: 1, Max: math.Inf(1)},
		"city":  NewTextFilter("A"),
		"when":  DateRange{From: datePtr(2024, 1, 1)},
	}
	out, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"score": {"min": 1, "max": null},
		"city": {"values": ["A"]},
		"when": {"from": "2024-01-01T00:00:00Z", "to": null}
	}`, string(out))
}
