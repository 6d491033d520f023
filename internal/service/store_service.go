package service

import (
	"context"
	"strings"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/repository"
)

// StoreService exposes the store database directly: status, summary and
// pass-through procedure and query execution.
type StoreService struct {
	gateway   repository.ProcedureGateway
	storeName string
	database  string
	started   time.Time
	now       func() time.Time
}

func NewStoreService(gateway repository.ProcedureGateway, storeName, database string) *StoreService {
	return &StoreService{
		gateway:   gateway,
		storeName: storeName,
		database:  database,
		started:   time.Now(),
		now:       time.Now,
	}
}

// StoreName is the display name used in responses and messages.
func (s *StoreService) StoreName() string { return s.storeName }

// Uptime is how long the service has been running.
func (s *StoreService) Uptime() time.Duration {
	return s.now().Sub(s.started)
}

// Info reports the configured database and whether a pool is available.
func (s *StoreService) Info() domain.StoreInfo {
	status := domain.StatusDisconnected
	if s.gateway.Connected() {
		status = domain.StatusConnected
	}
	return domain.StoreInfo{Store: s.storeName, Database: s.database, Status: status}
}

// Dashboard reads the live database summary.
func (s *StoreService) Dashboard(ctx context.Context) (*domain.DashboardInfo, error) {
	if !s.gateway.Connected() {
		return nil, domain.ErrNotConnected
	}
	return s.gateway.DashboardInfo(ctx)
}

// Exec runs call as a stored procedure.
func (s *StoreService) Exec(ctx context.Context, call domain.ProcedureCall) (*domain.RecordsetResult, error) {
	if strings.TrimSpace(call.Procedure) == "" {
		return nil, domain.NewValidationError("procedure", "procedure is required")
	}
	if !s.gateway.Connected() {
		return nil, domain.ErrNotConnected
	}
	return s.gateway.Execute(ctx, call.Procedure, call.Params)
}

// Query runs free-form SQL.
func (s *StoreService) Query(ctx context.Context, query string, params domain.Params) (*domain.RecordsetResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query", "query is required")
	}
	if !s.gateway.Connected() {
		return nil, domain.ErrNotConnected
	}
	return s.gateway.ExecuteRaw(ctx, query, params)
}
