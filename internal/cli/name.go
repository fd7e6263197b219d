package cli

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/cfgset/internal/ir"
)

// NameOptions holds flags for the name command.
type NameOptions struct {
	*RootOptions
	Clear bool
}

// NameResult reports a CFG after its name changed.
type NameResult struct {
	SetID uuid.UUID `json:"set_id"`
	CFG   CFGView   `json:"cfg"`
}

func (r NameResult) String() string {
	return r.CFG.String()
}

// NewNameCommand creates the name command.
func NewNameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "name <ea> [name]",
		Short: "Set or clear the procedure name of a CFG",
		Long: `Set the procedure name of the CFG anchored at <ea>.

The CFG must already exist (see create). An empty name is a valid name
and is distinct from no name; use --clear to remove the name.

Names are stored byte for byte and never normalized, so "get --name"
must be given the same bytes.

Examples:
  cfgset name 0x401000 main
  cfgset name 0x401000 ""
  cfgset name 0x401000 --clear`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runName(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "remove the procedure name")

	return cmd
}

func runName(opts *NameOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd)

	switch {
	case opts.Clear && len(args) != 1:
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, "--clear takes no name argument", nil)
	case !opts.Clear && len(args) != 2:
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, "a name argument is required (or use --clear)", nil)
	}

	ea, err := parseAddress(args[0], f)
	if err != nil {
		return err
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

	cfg := set.GetCFG(ea)
	if cfg == nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no CFG at %s", ea), nil)
	}

	if opts.Clear {
		cfg.ClearProcedureName()
	} else {
		cfg.SetProcedureName(args[1])
		warnUnusualName(ea, args[1])
	}

	if _, _, err := saveSet(ctx, st, set, f); err != nil {
		return err
	}
	return f.Success(NameResult{SetID: set.ID(), CFG: newCFGView(cfg)})
}

// warnUnusualName flags names that are easy to look up by mistake with
// different bytes, or that block export.
func warnUnusualName(ea ir.EA, name string) {
	switch {
	case !utf8.ValidString(name):
		slog.Warn("procedure name is not valid UTF-8; the set cannot be exported", "address", ea, "name", fmt.Sprintf("%q", name))
	case !norm.NFC.IsNormalString(name):
		slog.Warn("procedure name is not in Unicode NFC; lookups must use the same bytes", "address", ea, "name", name)
	}
}
