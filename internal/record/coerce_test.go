package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/schema"
)

func TestFamilyOf(t *testing.T) {
	tests := map[string]family{
		"integer":                  familyInt,
		"INT4":                     familyInt,
		"bigint":                   familyInt,
		"int unsigned":             familyInt,
		"serial":                   familyInt,
		"bigserial":                familyInt,
		"numeric(10,2)":            familyFloat,
		"double precision":         familyFloat,
		"REAL":                     familyFloat,
		"boolean":                  familyBool,
		"date":                     familyTemporal,
		"timestamp with time zone": familyTemporal,
		"DATETIME":                 familyTemporal,
		"interval":                 familyText,
		"point":                    familyText,
		"character varying(20)":    familyText,
		"time":                     familyText,
	}
	for typ, want := range tests {
		assert.Equal(t, want, familyOf(typ), typ)
	}
}

func TestCoerce(t *testing.T) {
	col := func(typ string) schema.Column { return schema.Column{Name: "c", Type: typ} }

	v, err := Coerce(col("integer"), " 42 ")
	require.NoError(t, err)
	assert.Equal(t, database.Int(42), v)

	v, err = Coerce(col("numeric"), "3.25")
	require.NoError(t, err)
	assert.Equal(t, database.Float(3.25), v)

	for _, s := range []string{"true", "T", "1", "yes", "y", "ON"} {
		v, err = Coerce(col("bool"), s)
		require.NoError(t, err, s)
		assert.Equal(t, database.Bool(true), v, s)
	}
	for _, s := range []string{"false", "f", "0", "No", "n", "off"} {
		v, err = Coerce(col("bool"), s)
		require.NoError(t, err, s)
		assert.Equal(t, database.Bool(false), v, s)
	}

	v, err = Coerce(col("date"), "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, database.Temporal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)), v)

	v, err = Coerce(col("date"), "next tuesday")
	require.NoError(t, err)
	assert.Equal(t, database.Text("next tuesday"), v)

	v, err = Coerce(col("text"), "anything")
	require.NoError(t, err)
	assert.Equal(t, database.Text("anything"), v)

	for _, tc := range []struct{ typ, in string }{{"int", "4.5"}, {"float", "abc"}, {"boolean", "maybe"}} {
		_, err = Coerce(col(tc.typ), tc.in)
		assert.True(t, errs.IsValidation(err), tc)
	}
}

func table() *schema.Table {
	return &schema.Table{Name: "clients", Columns: []schema.Column{
		{Name: "id", Type: "integer", PrimaryKey: true},
		{Name: "name", Type: "text"},
		{Name: "age", Type: "integer", Nullable: true},
		{Name: "vip", Type: "boolean", Nullable: true},
	}}
}

func TestCoerceInsert_IsStrict(t *testing.T) {
	out, err := CoerceInsert(table(), database.RowOf("name", "Ann", "age", "", "vip", "yes", "id", 7))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "vip", "id"}, out.Keys(), "empty text is omitted")
	vip, _ := out.Get("vip")
	assert.Equal(t, database.Bool(true), vip)
	id, _ := out.Get("id")
	assert.Equal(t, database.Int(7), id, "non-text values pass through")

	_, err = CoerceInsert(table(), database.RowOf("age", "old"))
	assert.True(t, errs.IsValidation(err))

	_, err = CoerceInsert(table(), database.RowOf("email", "x"))
	assert.True(t, errs.IsSchema(err))
}

func TestCoerceUpdate_IsLenient(t *testing.T) {
	out, err := CoerceUpdate(table(), database.RowOf("age", "", "vip", "maybe", "name", "Bo"))
	require.NoError(t, err)

	age, _ := out.Get("age")
	assert.True(t, age.IsNull(), "empty text becomes NULL")
	vip, _ := out.Get("vip")
	assert.Equal(t, database.Text("maybe"), vip, "malformed text is kept as-is")

	_, err = CoerceUpdate(table(), database.RowOf("email", "x"))
	assert.True(t, errs.IsSchema(err))
}
