// Package config defines configuration for the expost CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (EXPOST_ prefix)
//   - YAML configuration file (--config or EXPOST_CONFIG)
//
// Flags and environment variables override the file, which overrides
// Default().
//
// # File format
//
//	interval: 250ms
//	proc_root: /proc
//	display: bars
//	bar_width: 64
//	log_level: info
//	color: false
package config
