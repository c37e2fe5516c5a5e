// Package logger builds slog loggers with environment-appropriate defaults
// and provides typed attribute helpers for the engine's domain identifiers.
//
// Production defaults to JSON output at info level for log aggregation;
// development uses text output at debug level. Attribute helpers keep key
// names consistent across packages:
//
//	logger.CustomerID("c1"), logger.ProductID("p1"), logger.Error(err)
package logger
