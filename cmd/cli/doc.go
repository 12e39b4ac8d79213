// Package cli constructs the winget-publish command-line interface. It loads
// layered configuration (embedded defaults, config file, WINGETPUBLISH_*
// environment variables), builds the structured logger, and maps failures to
// process exit codes.
package cli
