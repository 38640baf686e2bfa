package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/fsic-portal/internal/application/registration"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
	"github.com/jhoicas/fsic-portal/internal/infrastructure/memory"
	"github.com/jhoicas/fsic-portal/internal/infrastructure/postgres"
	"github.com/jhoicas/fsic-portal/pkg/config"
)

// stores agrupa los repositorios del driver elegido.
type stores struct {
	tx                 registration.TxRunner
	registrations      repository.PendingRegistrationRepository
	pendingBusinesses  repository.PendingBusinessRepository
	authUsers          repository.AuthUserRepository
	accounts           repository.ApprovedAccountRepository
	roles              repository.RoleRepository
	approvedBusinesses repository.ApprovedBusinessRepository
	close              func()
}

func openStores(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*stores, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &stores{
			tx:                 s.TxRunner(),
			registrations:      s.Registrations(),
			pendingBusinesses:  s.PendingBusinesses(),
			authUsers:          s.AuthUsers(),
			accounts:           s.Accounts(),
			roles:              s.Roles(),
			approvedBusinesses: s.ApprovedBusinesses(),
			close:              func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.AutoMigrate {
		if err := postgres.ApplySchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("aplicar esquema: %w", err)
		}
		log.Info().Msg("esquema aplicado")
	}
	return &stores{
		tx:                 postgres.NewTxRunner(pool),
		registrations:      postgres.NewRegistrationRepository(pool),
		pendingBusinesses:  postgres.NewPendingBusinessRepository(pool),
		authUsers:          postgres.NewAuthUserRepository(pool),
		accounts:           postgres.NewAccountRepository(pool),
		roles:              postgres.NewRoleRepository(pool),
		approvedBusinesses: postgres.NewApprovedBusinessRepository(pool),
		close:              pool.Close,
	}, nil
}
