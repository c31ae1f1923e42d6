package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{":memory:", ":memory:?_foreign_keys=on"},
		{"gateworks.db", "gateworks.db?_foreign_keys=on"},
		{"file:gateworks.db?cache=shared", "file:gateworks.db?cache=shared&_foreign_keys=on"},
		{"gateworks.db?_foreign_keys=off", "gateworks.db?_foreign_keys=off"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SQLiteDSN(tt.in), tt.in)
	}
}

func TestConnectDBSQLite(t *testing.T) {
	prev := DB
	t.Cleanup(func() { DB = prev })

	err := ConnectDB(DBConfig{
		Driver:          "sqlite",
		URL:             filepath.Join(t.TempDir(), "gateworks.db"),
		MaxIdleConns:    2,
		MaxOpenConns:    3,
		ConnMaxLifetime: 5,
	})
	require.NoError(t, err)
	sqlDB, err := DB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	var fk int
	require.NoError(t, DB.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
}

func TestConnectDBRejectsBadConfig(t *testing.T) {
	assert.Error(t, ConnectDB(DBConfig{Driver: "sqlite"}))
	assert.Error(t, ConnectDB(DBConfig{Driver: "mysql", URL: "x"}))
}

func TestGormLoggerWritesToZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	newGormLogger().Warn(context.Background(), "constraint %s violated", "fk_facilities_client")

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "constraint fk_facilities_client violated")
}
