package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileColumn(t *testing.T) {
	schema := Schema{
		{Name: "city", Type: TypeText},
		{Name: "n", Type: TypeNumeric},
		{Name: "d", Type: TypeDate},
	}
	rows := Coerce([]RawRow{
		{"city": "B", "n": "5", "d": "2024-03-01"},
		{"city": "A", "n": "", "d": "bad"},
		{"city": "", "n": "x", "d": "2024-01-01"},
		{"city": "B", "n": "-2", "d": ""},
	}, schema)

	city := ProfileColumn(rows, schema[0])
	assert.Equal(t, []string{"B", "A"}, city.Distinct, "first-seen order, empty excluded")

	n := ProfileColumn(rows, schema[1])
	assert.True(t, n.HasRange)
	assert.Equal(t, -2.0, n.Min)
	assert.Equal(t, 5.0, n.Max)
	assert.Equal(t, 1, n.Nulls)
	assert.Equal(t, 1, n.Invalid)

	d := ProfileColumn(rows, schema[2])
	assert.True(t, d.HasDates)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", FormatISO(d.MinDate))
	assert.Equal(t, "2024-03-01T00:00:00.000Z", FormatISO(d.MaxDate))
	assert.Equal(t, 2, d.Nulls)
}

func TestColumnProfile_SliderRange(t *testing.T) {
	empty := &ColumnProfile{Type: TypeNumeric}
	lo, hi := empty.SliderRange()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 100.0, hi)

	p := &ColumnProfile{Type: TypeNumeric, Min: 3, Max: 9, HasRange: true}
	lo, hi = p.SliderRange()
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 9.0, hi)
}

func TestColumnProfile_MarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		profile *ColumnProfile
		want    string
	}{
		{
			name:    "text",
			profile: &ColumnProfile{Name: "c", Type: TypeText},
			want:    `{"name":"c","type":"text","nulls":0,"invalid":0,"distinct":[]}`,
		},
		{
			name:    "numeric without values",
			profile: &ColumnProfile{Name: "n", Type: TypeNumeric, Invalid: 2},
			want:    `{"name":"n","type":"numeric","nulls":0,"invalid":2,"range":[0,100]}`,
		},
		{
			name:    "date without values",
			profile: &ColumnProfile{Name: "d", Type: TypeDate, Nulls: 1},
			want:    `{"name":"d","type":"date","nulls":1,"invalid":0,"dateRange":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.profile)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
		})
	}
}

func TestChartDefaults(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		want   ChartAxes
	}{
		{"empty", nil, ChartAxes{}},
		{"first numeric", Schema{{"d", TypeDate}, {"t", TypeText}, {"n", TypeNumeric}, {"m", TypeNumeric}}, ChartAxes{X: "d", Y: "n"}},
		{"no numeric", Schema{{"a", TypeText}}, ChartAxes{X: "a"}},
		{"numeric first", Schema{{"n", TypeNumeric}}, ChartAxes{X: "n", Y: "n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChartDefaults(tt.schema))
		})
	}
}
