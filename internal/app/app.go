// Package app wires configuration into the gateway and services shared by
// the server and the command line tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/api"
	"github.com/electroitzone/report-dashboard/backend-go/internal/cache"
	"github.com/electroitzone/report-dashboard/backend-go/internal/config"
	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/report"
	"github.com/electroitzone/report-dashboard/backend-go/internal/repository"
	"github.com/electroitzone/report-dashboard/backend-go/internal/repository/mssql"
	"github.com/electroitzone/report-dashboard/backend-go/internal/service"
	"github.com/electroitzone/report-dashboard/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// OpenGateway connects to the store database. When the database is not
// configured or unreachable the returned gateway reports itself as
// disconnected; the error is only returned when cfg.Database.Required.
func OpenGateway(ctx context.Context, cfg *config.Config) (repository.ProcedureGateway, error) {
	db, err := mssql.NewDB(ctx, cfg.Database)
	if err == nil {
		return mssql.NewGateway(db), nil
	}

	var missing *domain.ConfigurationMissingError
	if errors.As(err, &missing) {
		log.Warn().Strs("missing", missing.Keys).Msg("database not configured, running without a connection")
	} else {
		log.Error().Err(err).Msg("could not connect to the store database")
	}
	if cfg.Database.Required {
		return nil, err
	}
	return repository.NewUnavailableGateway(), nil
}

// Services builds every service over gateway. The returned close func
// releases the cache client.
func Services(cfg *config.Config, gateway repository.ProcedureGateway) (*api.Services, func(), error) {
	dropdownCache, err := cache.NewDropdownCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("dropdown cache unavailable, continuing without it")
		dropdownCache = cache.NewNoopDropdownCache()
	}

	opts := []service.ReportServiceOption{
		service.WithDropdownCache(dropdownCache),
		service.WithDropdownProcedure(cfg.App.DropdownProcedure),
	}
	if cfg.Storage.Enabled {
		store, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			_ = dropdownCache.Close()
			return nil, nil, fmt.Errorf("export storage: %w", err)
		}
		expiry := time.Duration(cfg.Storage.URLExpiryMinutes) * time.Minute
		opts = append(opts, service.WithExportStorage(store, cfg.Storage.Prefix, expiry))
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		_ = dropdownCache.Close()
		return nil, nil, fmt.Errorf("AUTH_ENABLED requires AUTH_JWT_SECRET")
	}

	services := &api.Services{
		Store:   service.NewStoreService(gateway, cfg.App.StoreName, cfg.Database.Database),
		Reports: service.NewReportService(gateway, report.Default(), opts...),
		Auth:    service.NewAuthService(gateway, cfg.App.LoginProcedure, cfg.Auth),
	}
	closeFn := func() {
		if err := dropdownCache.Close(); err != nil {
			log.Warn().Err(err).Msg("close dropdown cache")
		}
	}
	return services, closeFn, nil
}
