package plans

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	dbpkg "github.com/storehubhq/storehub-backend/pkg/db"
	"github.com/storehubhq/storehub-backend/pkg/db/models"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

// catalog is the persistence surface the service needs from the Repository.
type catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	ListActive(ctx context.Context) ([]models.Plan, error)
}

// ServiceParams configure the plan service.
type ServiceParams struct {
	Logger *logger.Logger
	Repo   catalog
}

// Service exposes the plan catalog.
type Service struct {
	logg *logger.Logger
	repo catalog
}

// NewService validates dependencies and builds a Service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("plan repository required")
	}
	return &Service{logg: params.Logger, repo: params.Repo}, nil
}

// List returns every active plan.
func (s *Service) List(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	return plans, nil
}

// Get loads a plan by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	return plan, nil
}

// GetAssignable loads a plan and rejects it unless tenants may subscribe to
// it right now.
func (s *Service) GetAssignable(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.Status.Assignable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "plan is not open for assignment")
	}
	return plan, nil
}
