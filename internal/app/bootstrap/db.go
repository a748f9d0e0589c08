// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/trazilica/server/internal/app/system/indexes"
)

// EnsureSchema creates the indexes the stores rely on. The unique
// indexes are load-bearing: duplicate emails, duplicate group tags,
// double memberships, and double completions are all rejected by the
// database rather than by racy application checks.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.TrazilicaMongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
