// Package logging provides structured, leveled logging for the bwtree
// index engine and its tooling.
//
// # Overview
//
// The package exposes a small Logger interface with key-value structured
// fields, selectable text or JSON output, and a no-op implementation for
// library consumers that bring their own logging. The index core accepts a
// Logger through its options and reports structural events (splits, root
// promotions, consolidations) at debug level.
//
// # Usage
//
//	log := logging.New(logging.Config{Level: "debug", Format: "json"})
//	log.Info("index created", "name", "users_pk")
//
//	scoped := log.WithFields("index", "users_pk")
//	scoped.Debug("split", "pid", 12)
package logging
