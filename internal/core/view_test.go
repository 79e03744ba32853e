package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortSpec_Normalize(t *testing.T) {
	assert.Equal(t, "asc", SortSpec{Dir: ""}.Normalize().Dir)
	assert.Equal(t, "desc", SortSpec{Dir: "DESC"}.Normalize().Dir)
	assert.Equal(t, "asc", SortSpec{Dir: "sideways"}.Normalize().Dir)
}

func TestSortRows(t *testing.T) {
	schema := Schema{{Name: "id", Type: TypeText}, {Name: "n", Type: TypeNumeric}, {Name: "d", Type: TypeDate}}
	rows := Coerce([]RawRow{
		{"id": "a", "n": "3", "d": "2024-03-01"},
		{"id": "b", "n": "", "d": "2024-01-01"},
		{"id": "c", "n": "1", "d": ""},
		{"id": "d", "n": "x", "d": "2024-02-01"},
		{"id": "e", "n": "3", "d": "2024-01-01"},
	}, schema)

	tests := []struct {
		name string
		sort SortSpec
		want []string
	}{
		{"numeric asc, missing last, stable", SortSpec{Column: "n", Dir: "asc"}, []string{"c", "a", "e", "b", "d"}},
		{"numeric desc, missing still last", SortSpec{Column: "n", Dir: "desc"}, []string{"a", "e", "c", "b", "d"}},
		{"date asc", SortSpec{Column: "d"}, []string{"b", "e", "d", "a", "c"}},
		{"text desc", SortSpec{Column: "id", Dir: "desc"}, []string{"e", "d", "c", "b", "a"}},
		{"unknown column keeps order", SortSpec{Column: "zzz"}, []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortRows(rows, schema, tt.sort)
			var order []string
			for _, r := range got {
				order = append(order, r["id"].Raw)
			}
			assert.Equal(t, tt.want, order)
		})
	}

	assert.Equal(t, "a", rows[0]["id"].Raw, "input untouched")
}

func TestPaginate(t *testing.T) {
	rows := make([]TypedRow, 7)
	for i := range rows {
		rows[i] = TypedRow{"i": NumberValue("", float64(i))}
	}

	tests := []struct {
		name      string
		page      int
		size      int
		wantPage  int
		wantSize  int
		wantLen   int
		wantPages int
	}{
		{"first page", 1, 3, 1, 3, 3, 3},
		{"last partial page", 3, 3, 3, 3, 1, 3},
		{"page past end clamps", 9, 3, 3, 3, 1, 3},
		{"page zero clamps", 0, 3, 1, 3, 3, 3},
		{"default size", 1, 0, 1, DefaultPageSize, 7, 1},
		{"size capped", 1, MaxPageSize + 5, 1, MaxPageSize, 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Paginate(rows, tt.page, tt.size)
			assert.Equal(t, tt.wantPage, res.Page)
			assert.Equal(t, tt.wantSize, res.PageSize)
			assert.Len(t, res.Rows, tt.wantLen)
			assert.Equal(t, tt.wantPages, res.TotalPages)
			assert.Equal(t, 7, res.TotalRows)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	res := Paginate(nil, 4, 10)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 1, res.TotalPages)
	assert.Empty(t, res.Rows)
	assert.NotNil(t, res.Rows)
}
