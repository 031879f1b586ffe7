package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

func TestSelectBuilder(t *testing.T) {
	stmt, err := Select(database.DialectPostgres, "tours").
		Columns("id", "title").
		Where("country", "=", database.Text("Italy")).
		Where("price", "<", database.Float(999.5)).
		Where("guide", "=", database.Null()).
		OrderBy("price", Desc).
		Limit(20).
		Offset(40).
		Build()
	require.NoError(t, err)

	assert.Equal(t, `SELECT "id", "title" FROM "tours" WHERE "country" = $1 AND "price" < $2 AND "guide" IS NULL `+
		`ORDER BY "price" DESC LIMIT $3 OFFSET $4`, stmt.SQL)
	assert.Equal(t, []any{"Italy", 999.5, int64(20), int64(40)}, stmt.Args)
}

func TestSelectBuilder_PreviewShape(t *testing.T) {
	stmt, err := Select(database.DialectSQLite, "widgets").Limit(100).Build()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "widgets" LIMIT ?`, stmt.SQL)
	assert.Equal(t, []any{int64(100)}, stmt.Args)
}

func TestSelectBuilder_RejectsOperator(t *testing.T) {
	_, err := Select(database.DialectPostgres, "t").Where("a", "; DROP", database.Int(1)).Build()
	assert.True(t, errs.IsValidation(err))
}

func TestSelectBuilder_ILikeOutsidePostgres(t *testing.T) {
	stmt, err := Select(database.DialectMySQL, "t").Where("a", "ilike", database.Text("x%")).Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `t` WHERE `a` LIKE ?", stmt.SQL)
}

func TestSelectBuilder_OffsetWithoutLimit(t *testing.T) {
	stmt, err := Select(database.DialectSQLite, "t").Offset(5).Build()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "t" LIMIT -1 OFFSET ?`, stmt.SQL)
}
