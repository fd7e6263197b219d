package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/cfgset/internal/ir"
	"github.com/roach88/cfgset/internal/store"
)

// newFormatter builds the formatter every command writes through.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// openStore opens the database named by --db.
func openStore(opts *RootOptions, f *OutputFormatter) (*store.Store, error) {
	f.VerboseLog("Opening database %s", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	return st, nil
}

// loadSet resolves --set and restores the selected set from st.
// Without --set the database must hold exactly one set.
func loadSet(ctx context.Context, st *store.Store, opts *RootOptions, f *OutputFormatter) (*ir.CFGSet, error) {
	id, err := resolveSetID(ctx, st, opts, f)
	if err != nil {
		return nil, err
	}

	rec, err := st.LoadSet(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("set %s not found", id), nil)
	}
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to load set", err)
	}

	set, err := ir.Restore(rec)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStoreFailed, "stored set is corrupt", err)
	}
	slog.Debug("set loaded", "set_id", set.ID(), "cfgs", set.Size())
	return set, nil
}

func resolveSetID(ctx context.Context, st *store.Store, opts *RootOptions, f *OutputFormatter) (uuid.UUID, error) {
	if opts.SetID != "" {
		id, err := uuid.Parse(opts.SetID)
		if err != nil {
			return uuid.Nil, f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("invalid set id %q", opts.SetID), err)
		}
		return id, nil
	}

	sets, err := st.ListSets(ctx)
	if err != nil {
		return uuid.Nil, f.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to list sets", err)
	}
	switch len(sets) {
	case 0:
		return uuid.Nil, f.Fail(ExitCommandError, ErrCodeNotFound, "no sets in database (run init first)", nil)
	case 1:
		f.VerboseLog("Using set %s", sets[0].ID)
		return sets[0].ID, nil
	default:
		return uuid.Nil, f.Fail(ExitCommandError, ErrCodeSetRequired,
			fmt.Sprintf("--set is required: database holds %d sets", len(sets)), nil)
	}
}

// saveSet persists set and returns its digest.
func saveSet(ctx context.Context, st *store.Store, set *ir.CFGSet, f *OutputFormatter) (changed bool, digest string, err error) {
	rec := set.Record()
	changed, err = st.SaveSet(ctx, rec)
	if err != nil {
		return false, "", f.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to save set", err)
	}
	return changed, ir.Digest(rec), nil
}

// parseAddress parses a command-line address, reporting E002 on failure.
func parseAddress(arg string, f *OutputFormatter) (ir.EA, error) {
	ea, err := ir.ParseEA(arg)
	if err != nil {
		return 0, f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("invalid address %q", arg), err)
	}
	return ea, nil
}

// CFGView is a CFG as reported by the CLI.
type CFGView struct {
	ir.CFGRecord
}

func newCFGView(c *ir.CFG) CFGView {
	return CFGView{CFGRecord: c.Record()}
}

func (v CFGView) String() string {
	name := warnColor("(unnamed)")
	if v.ProcedureName != nil {
		name = fmt.Sprintf("%q", *v.ProcedureName)
	}
	return fmt.Sprintf("%s  %s  %s", addrColor(fmt.Sprintf("%16s", v.Address)), v.ID, name)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
