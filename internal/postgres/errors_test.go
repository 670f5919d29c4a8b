package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, IsUniqueViolation(wrap(CodeUniqueViolation)))
	assert.True(t, IsForeignKeyViolation(wrap(CodeForeignKeyViolation)))
	assert.True(t, IsCheckViolation(wrap(CodeCheckViolation)))
	assert.True(t, IsRetryable(wrap(CodeSerializationFailure)))
	assert.True(t, IsRetryable(wrap(CodeDeadlockDetected)))

	assert.False(t, IsRetryable(wrap(CodeUniqueViolation)))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}
