package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/cfgset/internal/archive"
	"github.com/roach88/cfgset/internal/ir"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
	As     string
}

// ExportResult reports a written archive.
type ExportResult struct {
	SetID  uuid.UUID      `json:"set_id"`
	Path   string         `json:"path"`
	Format archive.Format `json:"format"`
	CFGs   int            `json:"cfgs"`
	Digest string         `json:"digest"`
}

func (r ExportResult) String() string {
	return fmt.Sprintf("%s set %s (%d CFG(s)) to %s as %s", okColor("Exported"), r.SetID, r.CFGs, r.Path, r.Format)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a set to a JSON or YAML archive",
		Long: `Write a set to a JSON or YAML archive.

The archive format follows the output file extension (.json, .yaml, .yml)
unless --as is given. With -o - (the default) the archive is written to
stdout as JSON and no status line is printed.

JSON archives are canonical: exporting the same set twice produces
identical bytes.

Examples:
  cfgset export -o set.json
  cfgset export -o set.yaml --set 0190f4c2-...
  cfgset export --as yaml > set.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().StringVar(&opts.As, "as", "", "archive format (json|yaml); default from file extension")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd)
	toStdout := opts.Output == "-" || opts.Output == ""

	format, err := archiveFormat(opts.As, opts.Output, toStdout)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, "cannot choose archive format", err)
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

	rec := set.Record()
	digest := ir.Digest(rec)

	var buf bytes.Buffer
	if err := archive.Encode(&buf, rec, format); err != nil {
		if errors.Is(err, ir.ErrInvalidUTF8) {
			return f.Fail(ExitCommandError, ErrCodeInvalidArg, "a procedure name is not valid UTF-8 and cannot be archived", err)
		}
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to encode archive", err)
	}

	if toStdout {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed+": failed to write archive", err)
		}
		return nil
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", opts.Output), err)
	}
	f.VerboseLog("Wrote %d bytes to %s", buf.Len(), opts.Output)

	return f.Success(ExportResult{
		SetID:  set.ID(),
		Path:   opts.Output,
		Format: format,
		CFGs:   len(rec.CFGs),
		Digest: digest,
	})
}

// archiveFormat picks the explicit --as format, else the path's extension.
// Stdout defaults to JSON.
func archiveFormat(as, path string, stdout bool) (archive.Format, error) {
	if as != "" {
		return archive.ParseFormat(as)
	}
	if stdout {
		return archive.FormatJSON, nil
	}
	return archive.FormatFromPath(path)
}
