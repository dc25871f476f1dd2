package obs

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the service logger: human readable in development,
// JSON everywhere else.
func NewLogger(env, name string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "development" || env == "" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}

	return logger.Named(name).With(zap.String("env", env)), nil
}
