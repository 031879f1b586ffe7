package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/schema"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/testutil"
)

func TestDescribe(t *testing.T) {
	sess := testutil.SQLiteSession(t)
	testutil.Exec(t, sess,
		`CREATE TABLE clients (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE bookings (
			id INTEGER NOT NULL,
			client_id INTEGER NOT NULL REFERENCES clients (id),
			status TEXT DEFAULT 'new',
			note TEXT,
			PRIMARY KEY (id)
		)`,
	)

	tbl, err := schema.Describe(context.Background(), sess, "bookings")
	require.NoError(t, err)

	assert.Equal(t, "bookings", tbl.Name)
	assert.Equal(t, []string{"id", "client_id", "status", "note"}, tbl.ColumnNames())
	assert.Equal(t, []string{"id"}, tbl.PrimaryKeys())

	client, ok := tbl.Column("client_id")
	require.True(t, ok)
	require.NotNil(t, client.References)
	assert.Equal(t, schema.Reference{Table: "clients", Column: "id"}, *client.References)
	assert.True(t, client.Required())

	status, _ := tbl.Column("status")
	require.NotNil(t, status.Default)
	assert.Equal(t, "'new'", *status.Default)
	assert.True(t, status.Nullable)
	assert.False(t, status.Required())

	id, _ := tbl.Column("id")
	assert.True(t, id.PrimaryKey)
	assert.False(t, id.Nullable)
	assert.True(t, id.Generated, "a sole INTEGER primary key aliases the rowid")
}

func TestDescribe_MissingTable(t *testing.T) {
	sess := testutil.SQLiteSession(t)

	_, err := schema.Describe(context.Background(), sess, "ghost")
	require.Error(t, err)
	assert.True(t, errs.IsSchema(err))
}

func TestPrimaryKey(t *testing.T) {
	sess := testutil.SQLiteSession(t)
	testutil.Exec(t, sess,
		`CREATE TABLE keyed (code TEXT, seq INTEGER, PRIMARY KEY (code, seq))`,
		`CREATE TABLE loose (a TEXT, b TEXT)`,
	)
	ctx := context.Background()

	keyed, err := schema.Describe(ctx, sess, "keyed")
	require.NoError(t, err)
	pk, ok := keyed.PrimaryKey()
	assert.True(t, ok)
	assert.Equal(t, "code", pk)
	assert.Equal(t, []string{"code", "seq"}, keyed.PrimaryKeys())

	loose, err := schema.Describe(ctx, sess, "loose")
	require.NoError(t, err)
	_, ok = loose.PrimaryKey()
	assert.False(t, ok)
	assert.Empty(t, loose.PrimaryKeys())
}

func TestColumn_Required(t *testing.T) {
	def := "0"
	assert.True(t, schema.Column{Name: "a", Type: "int"}.Required())
	assert.False(t, schema.Column{Name: "a", Type: "int", Nullable: true}.Required())
	assert.False(t, schema.Column{Name: "a", Type: "int", Default: &def}.Required())
	assert.False(t, schema.Column{Name: "a", Type: "bigserial"}.Required())
}
