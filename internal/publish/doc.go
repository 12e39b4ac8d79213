// Package publish runs the winget-publish pipeline: it checks the GitHub CLI
// login, digests the installer, refreshes the cached fork clone of the
// manifest repository, generates the new version directory and opens the
// pull request. CommandBuilder exposes the pipeline as a cobra command.
package publish
