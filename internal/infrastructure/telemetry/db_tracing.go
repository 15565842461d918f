package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing registers the otelgorm plugin on db so every query runs
// as a child span of the request span. Query variables are excluded from the
// recorded SQL statement. A no-op when disabled.
func RegisterDBTracing(db *gorm.DB, enabled bool, log *zap.Logger) error {
	if !enabled {
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	log.Info("database tracing enabled")
	return nil
}
