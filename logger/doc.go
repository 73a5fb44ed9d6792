// Package logger provides structured logging for streamkit on top of zerolog.
//
// A process-wide logger is configured once with Init and then reached through
// the package-level helpers or component-scoped loggers:
//
//	logger.Init(&logger.Config{Level: "debug", Format: "console"})
//	log := logger.WithComponent("stream")
//	log.Debug("terminal finished", logger.Fields("op", "count", "elements", 3))
//
// Loggers pick up the pipeline id and the active trace/span ids from a
// context via WithContext.
package logger
