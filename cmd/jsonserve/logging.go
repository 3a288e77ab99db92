package main

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/natefinch/lumberjack.v2"

	"jsonserve/internal/shared"
)

// newLogger builds the process logger from the config. The returned func
// closes the rotated log file, if any.
func newLogger(cfg *shared.ServerConfig) (log.Logger, func() error) {
	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    25, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = io.MultiWriter(os.Stderr, lj)
		closeFn = lj.Close
	}
	out = log.NewSyncWriter(out)

	var logger log.Logger
	if cfg.LogJSON {
		logger = log.NewJSONLogger(out)
	} else {
		logger = log.NewLogfmtLogger(out)
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	if cfg.Debug {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	return logger, closeFn
}

// bootstrapLogger is used until the config has been read.
func bootstrapLogger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}
