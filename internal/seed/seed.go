package seed

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/acadsys/aulario/internal/app/models"
	appRepos "github.com/acadsys/aulario/internal/app/repositories"
	"github.com/acadsys/aulario/internal/config"
	"github.com/acadsys/aulario/internal/pkg/auth"
)

// CreateDefaultAdmin creates the bootstrap admin account if it doesn't exist.
// Every other account is created through the admin API afterwards.
func CreateDefaultAdmin(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	exists, err := userRepo.UsernameExists(ctx, cfg.Admin.Username)
	if err != nil {
		return err
	}
	if exists {
		lgr.Debug().Str("username", cfg.Admin.Username).Msg("Default admin already present")
		return nil
	}

	hashed, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Username: cfg.Admin.Username,
		Password: hashed,
		Role:     appModels.RoleAdmin,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}

	lgr.Info().Str("username", admin.Username).Msg("Default admin account created")
	return nil
}
