package kv

import (
	"fmt"

	"gorm.io/gorm"

	"freight-ops-backend/config"
)

// Open builds the Store selected by cfg.Driver. db is only used by the "sql" driver.
func Open(cfg config.StorageConfig, db *gorm.DB) (Store, error) {
	switch cfg.Driver {
	case "sql":
		if db == nil {
			return nil, fmt.Errorf("kv: sql driver requires a database")
		}
		return NewSQLStore(db), nil
	case "redis":
		return NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), nil
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
