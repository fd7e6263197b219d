package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// CreateResult reports the CFG returned by an idempotent create.
type CreateResult struct {
	SetID   uuid.UUID `json:"set_id"`
	CFG     CFGView   `json:"cfg"`
	Created bool      `json:"created"`
	Size    int       `json:"size"`
}

func (r CreateResult) String() string {
	status := okColor("created")
	if !r.Created {
		status = warnColor("existing")
	}
	return fmt.Sprintf("%s  %s", r.CFG, status)
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <ea>",
		Short: "Get or create the CFG anchored at an address",
		Long: `Return the CFG anchored at <ea>, creating it if the set has none.

Creating twice at the same address returns the same CFG; the second call
reports "existing" and leaves the set unchanged. Addresses are hex, with
or without a 0x prefix.

Examples:
  cfgset create 0x401000
  cfgset create 401000 --set 0190f4c2-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, args[0], cmd)
		},
	}
}

func runCreate(opts *RootOptions, arg string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts, cmd)

	ea, err := parseAddress(arg, f)
	if err != nil {
		return err
	}

	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	set, err := loadSet(ctx, st, opts, f)
	if err != nil {
		return err
	}
	defer set.Release()

	created := set.GetCFG(ea) == nil
	cfg := set.CreateCFG(ea)
	if created {
		f.VerboseLog("Created CFG at %s", ea)
		if _, _, err := saveSet(ctx, st, set, f); err != nil {
			return err
		}
	}

	return f.Success(CreateResult{
		SetID:   set.ID(),
		CFG:     newCFGView(cfg),
		Created: created,
		Size:    set.Size(),
	})
}
