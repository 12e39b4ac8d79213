// Package utils exposes the ambient helpers shared by the winget-publish
// commands.
//
// ConfigurationLoader layers the embedded defaults, an optional config.yaml
// and WINGETPUBLISH_* environment variables through Viper. LoggerFactory
// builds zap loggers that keep diagnostics on standard error so progress
// output on standard output stays readable. FlushingWriter keeps echoed
// commands visible while child processes stream their own output.
package utils
