package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/require"
)

func TestSQLStateClassification(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", Message: "insert or update on table \"donation\" violates foreign key constraint"}
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

	require.True(t, IsForeignKeyViolation(fk))
	require.True(t, IsForeignKeyViolation(fmt.Errorf("create donation: %w", fk)))
	require.False(t, IsUniqueViolation(fk))

	require.True(t, IsUniqueViolation(unique))
	require.False(t, IsForeignKeyViolation(unique))

	require.False(t, IsForeignKeyViolation(nil))
	require.False(t, IsForeignKeyViolation(errors.New("violates foreign key constraint")))
	require.False(t, IsUniqueViolation(errors.New("duplicate key value")))
}
