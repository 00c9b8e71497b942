package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storyvault/internal/facade"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	List bool
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <command> [json-arg...]",
		Short: "Send one command through the access facade",
		Long: `Send one command through the access facade and print its result.

Each argument after the command name is one positional JSON value, in the
order the command expects: create(record), getAll(projectId?), get(id),
update(id, patch), delete(id), search(query).

Example:
  storyvault call project:getAll
  storyvault call entity:create '{"projectId":1,"name":"Aria","type":"character"}'
  storyvault call entity:update 3 '{"description":"A reformed thief"}'
  storyvault call event:search '{"projectId":1,"axis":"chapter"}'
  storyvault call --list`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.List {
				return listCommands(opts, cmd)
			}
			if len(args) == 0 {
				return NewExitError(ExitCommandError, "a command name is required (see --list)")
			}
			return runCall(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.List, "list", false, "list available commands")

	return cmd
}

func listCommands(opts *CallOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	names := facade.CommandNames()
	if opts.Format == "json" {
		return f.Success(names)
	}
	return f.Success(strings.Join(names, "\n"))
}

func runCall(opts *CallOptions, command string, rawArgs []string, cmd *cobra.Command) error {
	args := make([]json.RawMessage, len(rawArgs))
	for i, a := range rawArgs {
		if !json.Valid([]byte(a)) {
			return NewExitError(ExitCommandError, fmt.Sprintf("argument %d is not valid JSON: %s", i+1, a))
		}
		args[i] = json.RawMessage(a)
	}

	return withSession(cmd, opts.RootOptions, func(s *session) error {
		s.log.Debug("submitting request", "command", command, "args", len(args))

		var resp facade.Response
		select {
		case resp = <-s.bridge.Submit(facade.Request{Command: command, Args: args}):
		case <-s.ctx.Done():
			return WrapExitError(ExitFailure, "", "interrupted", s.ctx.Err())
		}

		if resp.Error != nil {
			return WrapExitError(ExitFailure, "", command+" failed", resp.Error)
		}
		return s.out.Result(resp.Result, resp.ID)
	})
}
