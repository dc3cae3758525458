package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-ops-backend/config"
	"freight-ops-backend/internal/model"
)

func TestDialector(t *testing.T) {
	testCases := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{driver: "postgres", name: "postgres"},
		{driver: "sqlite", name: "sqlite"},
		{driver: "mysql", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.driver, func(t *testing.T) {
			d, err := Dialector(&config.DatabaseConfig{Driver: tc.driver, DSN: "x"})
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, d.Name())
		})
	}
}

func TestInit_SQLiteMigrates(t *testing.T) {
	gdb, err := Init(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:?cache=shared", MaxOpenConns: 1})
	require.NoError(t, err)
	sqlDB, _ := gdb.DB()
	defer sqlDB.Close()

	assert.True(t, gdb.Migrator().HasTable(&model.KVEntry{}))
	assert.True(t, gdb.Migrator().HasTable(&model.PushSubscription{}))
	assert.True(t, gdb.Migrator().HasColumn(&model.PushSubscription{}, "red_only"))
}
