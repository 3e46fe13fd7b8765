// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. Each
// subcommand translates its flags into the application's configuration.
package cli
