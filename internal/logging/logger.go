package logging

import "go.uber.org/zap"

// NewLogger writes to path since the terminal belongs to the renderer. An empty path disables logging.
func NewLogger(name string, debug bool, path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}

	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
	}
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(name), nil
}
