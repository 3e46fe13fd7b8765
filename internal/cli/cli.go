package cli

import (
	"context"
	"io"

	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
)

// Version is reported by --version.
const Version = "0.1.0"

// Exit codes besides success.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Meta carries what every command shares.
type Meta struct {
	Ctx context.Context
	Ui  cli.Ui
	// Out receives command results; Log receives application logs.
	Out io.Writer
	Log io.Writer
	FS  afero.Fs
}

// Commands returns the subcommand table.
func Commands(meta Meta) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"run": func() (cli.Command, error) {
			return &RunCommand{Meta: meta}, nil
		},
		"describe": func() (cli.Command, error) {
			return &DescribeCommand{Meta: meta}, nil
		},
		"watch": func() (cli.Command, error) {
			return &WatchCommand{Meta: meta}, nil
		},
	}
}

// Run dispatches args to a subcommand and returns its exit status.
func Run(ctx context.Context, args []string, out, errW io.Writer) (int, error) {
	ui := &cli.BasicUi{Writer: out, ErrorWriter: errW}
	c := &cli.CLI{
		Name:        "phasegrid",
		Version:     Version,
		Args:        args,
		Commands:    Commands(Meta{Ctx: ctx, Ui: ui, Out: out, Log: errW, FS: afero.NewOsFs()}),
		HelpWriter:  out,
		ErrorWriter: errW,
	}
	return c.Run()
}
