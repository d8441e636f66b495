// Package cli parses the command line shared by the provider commands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"air_bot/internal/model"
)

// Parse parses args as `<action> [-d|--dryrun] [-v|--verbose]`. Flags may
// appear before or after the action. The action itself is validated by the
// pipeline, not here.
func Parse(prog string, actions []model.Action, args []string, out io.Writer) (model.Request, error) {
	var req model.Request

	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.BoolVar(&req.DryRun, "d", false, "dry run, do not post on mastodon")
	fs.BoolVar(&req.DryRun, "dryrun", false, "dry run, do not post on mastodon")
	fs.BoolVar(&req.Verbose, "v", false, "verbose output")
	fs.BoolVar(&req.Verbose, "verbose", false, "verbose output")
	fs.Usage = func() {
		names := make([]string, len(actions))
		for i, a := range actions {
			names[i] = string(a)
		}
		_, _ = fmt.Fprintf(out, "Usage: %s [-d] [-v] <action>\n\nActions: %s\n\nFlags:\n", prog, strings.Join(names, ", "))
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return req, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return req, errors.New("action is required")
	}

	req.Action = model.Action(fs.Arg(0))
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return req, err
	}
	if fs.NArg() > 0 {
		return req, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return req, nil
}
