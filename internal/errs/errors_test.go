package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	assert.Equal(t, "[connection_failed] cannot open session: dial tcp: connection refused",
		Wrap(ErrKindConnectionFailed, "cannot open session", cause).Error())
	assert.Equal(t, "[validation] missing column", New(ErrKindValidation, "missing column").Error())
}

func TestPredicates_TraverseWrapping(t *testing.T) {
	base := New(ErrKindSchema, `table "ghost" not found`)
	wrapped := fmt.Errorf("describe: %w", base)

	assert.True(t, IsSchema(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, ErrKindSchema, KindOf(wrapped))
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
}

func TestClassifyConstraint(t *testing.T) {
	tests := []struct {
		text string
		want ConstraintKind
	}{
		{`null value in column "name" of relation "widgets" violates not-null constraint`, ConstraintNotNull},
		{"NOT NULL constraint failed: widgets.name", ConstraintNotNull},
		{"Column 'name' cannot be null", ConstraintNotNull},
		{`insert or update on table "orders" violates foreign key constraint "fk_orders_client_id"`, ConstraintForeignKey},
		{"FOREIGN KEY constraint failed", ConstraintForeignKey},
		{`duplicate key value violates unique constraint "widgets_pkey"`, ConstraintUnique},
		{"Duplicate entry '1' for key 'PRIMARY'", ConstraintUnique},
		{"value too long for type character varying(5)", ConstraintLength},
		{`invalid input syntax for type integer: "abc"`, ConstraintTypeFormat},
		{`value "99999999999" is out of range for type integer`, ConstraintRange},
		{`relation "ghost" does not exist`, ConstraintNone},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyConstraint(tt.text))
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "a required field cannot be NULL",
		Describe(Violation(ConstraintNotNull, "insert failed", errors.New("x"))))
	assert.Equal(t, "foreign key integrity violation",
		Describe(Violation(ConstraintForeignKey, "insert failed", nil)))
	assert.Equal(t, "required column \"name\" is missing",
		Describe(New(ErrKindValidation, "required column \"name\" is missing")))
	assert.Equal(t, "database error: syntax error at or near \"SELEC\"",
		Describe(Wrap(ErrKindQueryFailed, "query failed", errors.New(`syntax error at or near "SELEC"`))))
	assert.Empty(t, Describe(nil))
}

func TestCause_ReturnsInnermostText(t *testing.T) {
	inner := errors.New(`relation "does_not_exist" does not exist`)
	err := fmt.Errorf("run: %w", Wrap(ErrKindQueryFailed, "query failed", inner))

	assert.Equal(t, `relation "does_not_exist" does not exist`, Cause(err))
	assert.Equal(t, "only message", Cause(New(ErrKindExport, "only message")))
}
