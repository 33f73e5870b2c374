// Package store 依設定建立儲存後端。
package store

import (
	"context"
	"fmt"
	"io"

	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/infrastructure/config"
	"recipe-planner/internal/infrastructure/store/memory"
	"recipe-planner/internal/infrastructure/store/redisstore"
	"recipe-planner/internal/infrastructure/store/sqlstore"
	"recipe-planner/internal/infrastructure/store/supabase"
	"recipe-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Open 依 driver 建立儲存。回傳的 io.Closer 可為 nil
func Open(ctx context.Context, cfg config.StoreConfig) (shopping.Store, io.Closer, error) {
	common.LogInfo("Opening store", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.New(), nil, nil

	case config.DriverSQLite, config.DriverPostgres:
		s, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case config.DriverRedis:
		s, err := redisstore.Connect(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case config.DriverSupabase:
		s, err := supabase.New(supabase.Config{
			URL:     cfg.Supabase.URL,
			APIKey:  cfg.Supabase.Key,
			Timeout: cfg.Supabase.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}

	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}
