package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/cfgset/internal/ir"
)

// InitResult reports a newly created set.
type InitResult struct {
	SetID  uuid.UUID `json:"set_id"`
	Digest string    `json:"digest"`
}

func (r InitResult) String() string {
	return fmt.Sprintf("%s set %s", okColor("Created"), r.SetID)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty set",
		Long: `Create an empty CFG set in the database and print its id.

Examples:
  cfgset init --db ./cfgset.db
  cfgset init --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts, cmd)

	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	set := ir.NewCFGSet()
	defer set.Release()

	_, digest, err := saveSet(ctx, st, set, f)
	if err != nil {
		return err
	}
	return f.Success(InitResult{SetID: set.ID(), Digest: digest})
}
