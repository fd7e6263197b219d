package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cfgset/internal/ir"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Name string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <ea> | get --name <name>",
		Short: "Look up a CFG by address or by procedure name",
		Long: `Look up a CFG by anchor address or by procedure name.

Lookups never create anything. When several CFGs share a name the one
created first is returned. An explicitly empty name (--name "") matches
CFGs named "" but never unnamed CFGs.

Exit codes:
  0 - CFG found
  1 - No CFG matches
  2 - Command error (bad address, database not found, etc.)

Examples:
  cfgset get 0x401000
  cfgset get --name main --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "look up by procedure name instead of address")

	return cmd
}

func runGet(opts *GetOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd)

	byName := cmd.Flags().Changed("name")
	if byName == (len(args) == 1) {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, "give exactly one of <ea> or --name", nil)
	}

	var ea ir.EA
	if !byName {
		var err error
		if ea, err = parseAddress(args[0], f); err != nil {
			return err
		}
	}

	st, err := openStore(opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer st.Close()

	set, err := loadSet(ctx, st, opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer set.Release()

	if byName {
		cfg := set.GetCFGByName(opts.Name)
		if cfg == nil {
			return f.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no CFG named %q", opts.Name), nil)
		}
		return f.Success(newCFGView(cfg))
	}

	cfg := set.GetCFG(ea)
	if cfg == nil {
		return f.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no CFG at %s", ea), nil)
	}
	return f.Success(newCFGView(cfg))
}
