// Package logger wraps zap with a process-wide sugared logger, context
// helpers for scoped loggers, and a parser for the bot's LOG_LEVEL values.
package logger
