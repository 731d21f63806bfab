package logger

import (
	"sync"
)

// Log levels accepted in config and env.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Options controls how a Logger is built.
type Options struct {
	Level string
	// File enables a rotating file sink next to stdout. Empty means stdout only.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Get returns the process-wide logger. The first call decides the level;
// later calls return the same instance.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = New(Options{Level: level})
	})
	return globalLogger
}

// Init sets up the process-wide logger from options. It only has an effect
// before the first Get.
func Init(opts Options) *Logger {
	once.Do(func() {
		globalLogger = New(opts)
	})
	return globalLogger
}
