package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/compta", migrateURL("postgres://u:p@db:5432/compta"))
	assert.Equal(t, "pgx5://u@db/compta?sslmode=disable", migrateURL("postgresql://u@db/compta?sslmode=disable"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}

func TestNewMigrator_EmptyURL(t *testing.T) {
	_, err := NewMigrator("")
	assert.Error(t, err)
}
