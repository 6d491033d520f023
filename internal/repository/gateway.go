// backend-go/internal/repository/gateway.go
package repository

import (
	"context"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
)

// ProcedureGateway runs stored procedures and raw SQL against the store
// database and returns every recordset in the order the engine produced it.
type ProcedureGateway interface {
	Execute(ctx context.Context, procedure string, params domain.Params) (*domain.RecordsetResult, error)
	ExecuteRaw(ctx context.Context, query string, params domain.Params) (*domain.RecordsetResult, error)
	DashboardInfo(ctx context.Context) (*domain.DashboardInfo, error)
	Connected() bool
	Close() error
}

// unavailableGateway stands in for a pool that was never opened.
type unavailableGateway struct{}

// NewUnavailableGateway returns a gateway whose calls all fail with
// domain.ErrNotConnected.
func NewUnavailableGateway() ProcedureGateway {
	return &unavailableGateway{}
}

func (g *unavailableGateway) Execute(context.Context, string, domain.Params) (*domain.RecordsetResult, error) {
	return nil, domain.ErrNotConnected
}

func (g *unavailableGateway) ExecuteRaw(context.Context, string, domain.Params) (*domain.RecordsetResult, error) {
	return nil, domain.ErrNotConnected
}

func (g *unavailableGateway) DashboardInfo(context.Context) (*domain.DashboardInfo, error) {
	return nil, domain.ErrNotConnected
}

func (g *unavailableGateway) Connected() bool { return false }

func (g *unavailableGateway) Close() error { return nil }
