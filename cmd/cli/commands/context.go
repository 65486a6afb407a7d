package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/internal/config"
	"github.com/jakechorley/team-rota/pkg/core/model"
	"github.com/jakechorley/team-rota/pkg/db"
)

// Migrator applies the database schema
type Migrator interface {
	RunMigrations(ctx context.Context) error
}

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Migrator Migrator
	Logger   *zap.Logger
	Ctx      context.Context
	// Now is the clock used by the commands; time.Now when nil
	Now func() time.Time

	// feed is the last feed shown in this session; markRead drops items from it
	feed model.Feed
}

func (a *AppContext) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
