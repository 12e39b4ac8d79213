// Package githubcli wraps the GitHub CLI operations used to publish a manifest.
//
// The client checks the operator's gh login, forks and clones the manifest
// repository, force-syncs the fork with its source, and opens the pull
// request. Every call goes through an execshell executor so tests can record
// the exact gh arguments.
package githubcli
