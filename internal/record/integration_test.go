package record_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	_ "github.com/ashkelyonok/TourismAgencyDBManager/internal/database/mysql"
	_ "github.com/ashkelyonok/TourismAgencyDBManager/internal/database/postgres"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/query"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/record"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/schema"
)

// TestServerEngines runs the mutation round trip against real servers.
// Each dialect is skipped unless its URL variable is set.
func TestServerEngines(t *testing.T) {
	engines := []struct {
		dialect database.Dialect
		env     string
	}{
		{database.DialectPostgres, "TEST_POSTGRES_URL"},
		{database.DialectMySQL, "TEST_MYSQL_URL"},
	}

	for _, e := range engines {
		t.Run(e.dialect.String(), func(t *testing.T) {
			url := os.Getenv(e.env)
			if url == "" {
				t.Skipf("%s not set", e.env)
			}
			roundTrip(t, &database.Config{Dialect: e.dialect, URL: url})
		})
	}
}

func roundTrip(t *testing.T, cfg *database.Config) {
	ctx := context.Background()
	drv, err := database.NewDriver(cfg)
	require.NoError(t, err)
	sess, err := database.NewSession(ctx, drv, cfg)
	require.NoError(t, err)

	m := record.New(sess)
	suffix := uuid.NewString()[:8]
	parents := "it_parents_" + suffix
	children := "it_children_" + suffix

	require.NoError(t, m.CreateTable(ctx, parents, []schema.Column{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "name", Type: "VARCHAR(16)"},
		{Name: "price", Type: "DECIMAL(10,2)", Nullable: true},
	}))
	require.NoError(t, m.CreateTable(ctx, children, []schema.Column{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "parent_id", Type: "INTEGER", References: &schema.Reference{Table: parents, Column: "id"}},
	}))
	t.Cleanup(func() {
		_ = m.DropTable(ctx, children)
		_ = m.DropTable(ctx, parents)
	})

	tables, err := sess.ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, parents)

	tbl, err := schema.Describe(ctx, sess, children)
	require.NoError(t, err)
	ref, ok := tbl.Column("parent_id")
	require.True(t, ok)
	require.NotNil(t, ref.References)
	assert.Equal(t, parents, ref.References.Table)

	require.NoError(t, m.InsertText(ctx, parents, database.RowOf("id", "1", "name", "alpha", "price", "9.50")))

	err = m.Insert(ctx, parents, database.RowOf("id", 1, "name", "dup"))
	require.Error(t, err)
	assert.Equal(t, errs.ConstraintUnique, errs.ConstraintOf(err))

	err = m.Insert(ctx, children, database.RowOf("id", 1, "parent_id", 42))
	require.Error(t, err)
	assert.Equal(t, errs.ConstraintForeignKey, errs.ConstraintOf(err))

	// MySQL only rejects overlong text in strict mode.
	if cfg.Dialect == database.DialectPostgres {
		err = m.Insert(ctx, parents, database.RowOf("id", 2, "name", strings.Repeat("x", 40)))
		require.Error(t, err)
		assert.Equal(t, errs.ConstraintLength, errs.ConstraintOf(err))
	}

	ok, err = m.UpdateText(ctx, parents, database.RowOf("id", 1, "name", "alpha"), database.RowOf("name", "beta", "price", ""))
	require.NoError(t, err)
	assert.True(t, ok)

	out := query.Preview(ctx, sess, parents, 10)
	require.True(t, out.Success, out.Message)
	require.Len(t, out.Rows, 1)
	name, _ := out.Rows[0].Get("name")
	assert.Equal(t, "beta", name.AsText())
	price, _ := out.Rows[0].Get("price")
	assert.True(t, price.IsNull())

	ok, err = m.Delete(ctx, parents, database.RowOf("id", 1))
	require.NoError(t, err)
	assert.True(t, ok)
}
