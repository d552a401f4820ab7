// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

const serviceName = "rafiqe"

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init initializes the global logger for the given environment.
// "production" writes JSON, "test" discards everything, and any other
// environment gets the console encoder at debug level.
func Init(env string) {
	once.Do(func() {
		sugar = newBase(env).Sugar()
	})
}

func newBase(env string) *zap.Logger {
	var (
		base *zap.Logger
		err  error
	)
	switch env {
	case "test":
		return zap.NewNop()
	case "production":
		base, err = zap.NewProduction(zap.Fields(zap.String("service", serviceName)))
	default:
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return base
}

// Get returns the global sugared logger, initializing a development logger
// on first use.
func Get() *zap.SugaredLogger {
	Init("development")
	return sugar
}

// Named returns a child of the global logger tagged with the component
// name, e.g. "budget" or "advisory".
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
