package repo

import (
	"errors"
	"fmt"
	"testing"

	dom "taskboard/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateInvalidTextKeepsValue(t *testing.T) {
	err := translate(fmt.Errorf("find: %w", &pgconn.PgError{
		Code:    "22P02",
		Message: `invalid input syntax for type uuid: "42"`,
	}))
	var ce *dom.CastError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "42", ce.Value)
	assert.Equal(t, `Cast to UUID failed for value "42" (type string) at path "id"`, err.Error())
}

func TestTranslateCheckViolation(t *testing.T) {
	err := translate(&pgconn.PgError{Code: "23514", ConstraintName: "tasks_name_length"})
	var ve *dom.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, err.Error(), dom.MsgNameTooLong)
}

func TestTranslatePassesOtherErrorsThrough(t *testing.T) {
	boom := errors.New("boom")
	assert.Same(t, boom, translate(boom))
}
