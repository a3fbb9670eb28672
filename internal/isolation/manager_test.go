package isolation

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storehubhq/storehub-backend/pkg/config"
	dbpkg "github.com/storehubhq/storehub-backend/pkg/db"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

func newTestManager(t *testing.T) (*Manager, *dbpkg.Client) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := dbpkg.New(context.Background(), config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          "file::memory:",
		MaxOpenConns: 1,
	}, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	mgr, err := NewManager(ManagerParams{Logger: logg, DB: client})
	require.NoError(t, err)
	return mgr, client
}

func TestNewManagerValidatesParams(t *testing.T) {
	_, err := NewManager(ManagerParams{})
	assert.Error(t, err)
}

func TestWithTenantTxRejectsNilTenant(t *testing.T) {
	mgr, _ := newTestManager(t)

	err := mgr.WithTenantTx(context.Background(), uuid.Nil, func(*gorm.DB) error {
		t.Fatal("fn must not run without a tenant id")
		return nil
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}

func TestWithTenantTxFailsClosedWhenBindFails(t *testing.T) {
	// sqlite has no set_config, so the session bind errors. fn must never
	// run on a connection whose tenant setting is unconfirmed.
	mgr, _ := newTestManager(t)

	ran := false
	err := mgr.WithTenantTx(context.Background(), uuid.New(), func(*gorm.DB) error {
		ran = true
		return nil
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	assert.False(t, ran)
}

func TestScopedFiltersByTenant(t *testing.T) {
	_, client := newTestManager(t)
	conn := client.DB()

	require.NoError(t, conn.Exec(
		"CREATE TABLE widgets (id integer PRIMARY KEY, tenant_id text NOT NULL, name text)",
	).Error)

	mine := uuid.New()
	other := uuid.New()
	require.NoError(t, conn.Exec(
		"INSERT INTO widgets (tenant_id, name) VALUES (?, ?), (?, ?), (?, ?)",
		mine.String(), "a", mine.String(), "b", other.String(), "c",
	).Error)

	var count int64
	require.NoError(t, Scoped(conn.Table("widgets"), mine).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, Scoped(conn.Table("widgets"), other).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
