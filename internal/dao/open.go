package dao

import (
	"context"
	"fmt"

	"tagarena/pkg/config"
)

// Open builds the gateway selected by persistence.driver.
func Open(ctx context.Context, cfg *config.Config) (Gateway, error) {
	switch cfg.Persistence.Driver {
	case "", "sqlite":
		s, err := OpenSQLite(ctx, cfg.Persistence.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		s, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mysql":
		s, err := OpenMySQL(cfg.MySQL.DSN())
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", cfg.Persistence.Driver)
	}
}
