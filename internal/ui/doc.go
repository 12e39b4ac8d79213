// Package ui provides helpers for formatting human-readable console output.
//
// CommandEchoPrinter mirrors every external command line to the terminal so an
// operator can audit what the publishing pipeline ran, while detailed
// telemetry continues to flow through the structured logger.
package ui
