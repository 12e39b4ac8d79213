// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and lifecycle notifications via ShellExecutor,
// exposes OSCommandRunner for default process execution, and defines the
// abstractions used throughout winget-publish to run git, gh, and curl in a
// testable manner.
package execshell
