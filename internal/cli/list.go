package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/cfgset/internal/store"
)

// ListSetsResult lists every set in the database.
type ListSetsResult struct {
	Sets []store.SetSummary `json:"sets"`
}

func (r ListSetsResult) String() string {
	if len(r.Sets) == 0 {
		return "No sets in database."
	}
	lines := make([]string, 0, len(r.Sets))
	for _, s := range r.Sets {
		lines = append(lines, fmt.Sprintf("%s  %d CFG(s)  %s", s.ID, s.CFGCount, shortDigest(s.Digest)))
	}
	return joinLines(lines)
}

func shortDigest(d string) string {
	if len(d) <= 12 {
		return d
	}
	return d[:12]
}

// ListCFGsResult lists one set's CFGs in set order.
type ListCFGsResult struct {
	SetID uuid.UUID `json:"set_id"`
	Size  int       `json:"size"`
	Empty bool      `json:"empty"`
	CFGs  []CFGView `json:"cfgs"`
}

func (r ListCFGsResult) String() string {
	lines := []string{fmt.Sprintf("Set %s: %d CFG(s)", r.SetID, r.Size)}
	for _, c := range r.CFGs {
		lines = append(lines, "  "+c.String())
	}
	return joinLines(lines)
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sets, or the CFGs of one set",
		Long: `Without --set, list every set in the database.
With --set, list that set's CFGs in creation order.

Examples:
  cfgset list
  cfgset list --set 0190f4c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts, cmd)

	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.SetID == "" {
		sets, err := st.ListSets(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to list sets", err)
		}
		return f.Success(ListSetsResult{Sets: sets})
	}

	set, err := loadSet(ctx, st, opts, f)
	if err != nil {
		return err
	}
	defer set.Release()

	result := ListCFGsResult{
		SetID: set.ID(),
		Size:  set.Size(),
		Empty: set.Empty(),
		CFGs:  make([]CFGView, 0, set.Size()),
	}
	for _, c := range set.All() {
		result.CFGs = append(result.CFGs, newCFGView(c))
	}
	return f.Success(result)
}
