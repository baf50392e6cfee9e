// Package log provides the structured logging facade used across the
// codebase.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a
// pluggable Formatter (text or JSON) into one or more Outputs.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.WithComponent("dump")
//	l.Info("event parsed", log.Int("messages", 12))
//
// # Interop
//
// RedirectStdLog routes standard-library log output (used by Pebble) through
// a Logger so every line shares one format.
package log
