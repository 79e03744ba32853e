package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	input := "\ufeffcity,score,when\nA,10,2024-01-01\nB,,2024-02-01\nA,x,\n"

	ds, err := Load(strings.NewReader(input), "reports/q1.csv", LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "reports/q1.csv", ds.Path)
	assert.Equal(t, "q1.csv", ds.FileName)
	assert.Equal(t, []string{"city", "score", "when"}, ds.Headers)
	assert.Equal(t, Schema{
		{Name: "city", Type: TypeText},
		{Name: "score", Type: TypeText},
		{Name: "when", Type: TypeDate},
	}, ds.Schema)
	assert.Len(t, ds.Rows, 3)
	assert.False(t, ds.LoadedAt.IsZero())
}

func TestLoad_SampleDrivesSchema(t *testing.T) {
	input := "n\n1\n2\nx\n"

	ds, err := Load(strings.NewReader(input), "a.csv", LoadOptions{SampleSize: 2})
	require.NoError(t, err)

	require.Equal(t, TypeNumeric, ds.Schema[0].Type)
	assert.Equal(t, KindInvalidNumber, ds.Rows[2]["n"].Kind, "rows past the sample are still coerced")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("\n\n"), "empty.csv", LoadOptions{})
	assert.ErrorIs(t, err, ErrNoHeader)
	assert.Contains(t, err.Error(), "empty.csv")

	_, err = Load(strings.NewReader("a,b\n1,2\n3,4\n"), "big.csv", LoadOptions{MaxBytes: 5})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLoad_Delimiter(t *testing.T) {
	ds, err := Load(strings.NewReader("a;b\n1;2\n"), "semi.csv", LoadOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Headers)
	assert.Equal(t, 2.0, ds.Rows[0]["b"].Num)
}

func TestDataset_ProfilesAndFilter(t *testing.T) {
	ds, err := Load(strings.NewReader("city,score\nA,10\nB,20\nC,30\n"), "c.csv", LoadOptions{})
	require.NoError(t, err)

	profiles := ds.Profiles()
	require.Len(t, profiles, 2)
	assert.Equal(t, "city", profiles[0].Name)
	assert.Equal(t, []string{"A", "B", "C"}, profiles[0].Distinct)
	assert.Equal(t, 30.0, profiles[1].Max)
	assert.Nil(t, ds.Profile("missing"))

	assert.Len(t, ds.Filter(nil), 3)
	got := ds.Filter(FilterSpec{"score": NumericRange{Min: 15, Max: 30}})
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0]["city"].Raw)
}

func TestLoad_DuplicateHeaders(t *testing.T) {
	ds, err := Load(strings.NewReader("a,a,b\n1,x,2\n3,y,4\n"), "dup.csv", LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, Schema{
		{Name: "a", Type: TypeText},
		{Name: "b", Type: TypeNumeric},
	}, ds.Schema, "one column per name, typed from the rightmost cell")

	for i, row := range ds.Rows {
		require.Len(t, row, len(ds.Schema), "row %d", i)
		for _, col := range ds.Schema {
			_, ok := row[col.Name]
			assert.True(t, ok, "row %d missing %q", i, col.Name)
		}
	}
	assert.Equal(t, "x", ds.Rows[0]["a"].Raw)
}

func TestLoad_NameAgeInput(t *testing.T) {
	ds, err := Load(strings.NewReader("name,age\nAda,36\nLin,\nKo,abc\n"), "people.csv", LoadOptions{})
	require.NoError(t, err)

	// "abc" is in the sample, so age does not qualify as numeric.
	assert.Equal(t, Schema{
		{Name: "name", Type: TypeText},
		{Name: "age", Type: TypeText},
	}, ds.Schema)
	require.Len(t, ds.Rows, 3)
	assert.Equal(t, KindText, ds.Rows[0]["age"].Kind)
	assert.Equal(t, "36", ds.Rows[0]["age"].Raw)
	assert.Equal(t, "abc", ds.Rows[2]["age"].Raw)
}
