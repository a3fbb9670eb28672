package isolation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/storehubhq/storehub-backend/pkg/db"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

// ManagerParams configure the isolation manager.
type ManagerParams struct {
	Logger *logger.Logger
	DB     *dbpkg.Client
}

// Manager hands out tenant-scoped database access. Every tenant-scoped query
// runs through two independent channels carrying the same id: an explicit
// tenant_id filter added by Scoped, and the app.tenant_id session setting that
// the row-level security policies read. WithTenantTx binds the setting for
// the duration of a transaction and fails closed when the bind cannot be
// confirmed.
type Manager struct {
	logg *logger.Logger
	db   *dbpkg.Client
}

// NewManager validates dependencies and builds a Manager.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &Manager{logg: params.Logger, db: params.DB}, nil
}

// WithTenantTx runs fn inside a transaction whose connection carries
// app.tenant_id. set_config with is_local=true scopes the setting to the
// transaction, so it cannot leak to the next request sharing the pooled
// connection. SET LOCAL cannot take a bind parameter; set_config can.
func (m *Manager) WithTenantTx(ctx context.Context, tenantID uuid.UUID, fn func(tx *gorm.DB) error) error {
	if tenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "tenant id is required for scoped access")
	}
	return m.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT set_config('app.tenant_id', ?, true)", tenantID.String()).Error; err != nil {
			logCtx := m.logg.WithTenantID(ctx, tenantID.String())
			m.logg.Error(logCtx, "failed to bind tenant session setting", err)
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bind tenant session")
		}
		return fn(tx)
	})
}

// Scoped narrows a query to one tenant. Callers must route every read or
// write on tenant-owned tables through this filter; the RLS policy is the
// backstop, not the primary control.
func Scoped(tx *gorm.DB, tenantID uuid.UUID) *gorm.DB {
	return tx.Where("tenant_id = ?", tenantID)
}
