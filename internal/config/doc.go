// Package config carries the tooling configuration: parsing limits, storage
// location, and log settings.
//
// Configuration is loaded from an optional JSON file and overlaid with
// BMQ_* environment variables; flags handled by the CLI win over both.
package config
