// Package logger provides structured logging for reqkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. The dispatcher logs through a component logger
// obtained from the registry, tagging every line with request fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("reqkit")
//	log.Debug("dispatch", logger.RequestFields(id, "GET", url))
package logger
