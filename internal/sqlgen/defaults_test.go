package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

func TestClassifyDefault(t *testing.T) {
	tests := []struct {
		raw  string
		want DefaultKind
	}{
		{"TRUE", DefaultKeyword},
		{"null", DefaultKeyword},
		{"CURRENT_TIMESTAMP", DefaultKeyword},
		{"42", DefaultNumeric},
		{"-3.5", DefaultNumeric},
		{"1e6", DefaultNumeric},
		{"now()", DefaultFunction},
		{"gen_random_uuid()", DefaultFunction},
		{"datetime('now')", DefaultFunction},
		{"CURRENT_TIMESTAMP(3)", DefaultFunction},
		{"nextval('widgets_id_seq'::regclass)", DefaultSequence},
		{"'pending'", DefaultQuoted},
		{"'it''s'::character varying", DefaultQuoted},
		{"pending", DefaultText},
		{"New York", DefaultText},
		{"", DefaultText},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ClassifyDefault(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyDefault_Ambiguous(t *testing.T) {
	for _, raw := range []string{"lower(name)", "'unterminated", "x'; DROP TABLE t; --", "1::int", `say "hi"`} {
		_, err := ClassifyDefault(raw)
		assert.True(t, errs.IsValidation(err), raw)
	}
}

func TestRenderDefault(t *testing.T) {
	got, err := RenderDefault(database.DialectPostgres, "pending")
	require.NoError(t, err)
	assert.Equal(t, "'pending'", got)

	got, err = RenderDefault(database.DialectPostgres, "now()")
	require.NoError(t, err)
	assert.Equal(t, "now()", got)

	got, err = RenderDefault(database.DialectMySQL, "'abc'::character varying")
	require.NoError(t, err)
	assert.Equal(t, "'abc'", got)
}
