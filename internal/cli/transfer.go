package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/updatelog/internal/engine"
	"github.com/roach88/updatelog/internal/export"
	"github.com/roach88/updatelog/internal/importer"
	"github.com/roach88/updatelog/internal/record"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Sheet        string
	ClientColumn string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a spreadsheet of updates",
		Long: `Merge a CSV, XLSX or YAML batch of updates in one transaction.

Rows keep their position in the file: the row at position p gets arrival
order (current maximum + p). Rows with an empty or placeholder client label
are skipped but still use up their position.

Example:
  updatelog import meetings.xlsx --sheet "Q3"
  updatelog import meetings.csv --client-column "Company"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "XLSX sheet to read (overrides config)")
	cmd.Flags().StringVar(&opts.ClientColumn, "client-column", "", "client column header (overrides config)")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	readOpts := importer.Options{
		Sheet:        s.cfg.Import.Sheet,
		ClientColumn: s.cfg.Import.ClientColumn,
	}
	if opts.Sheet != "" {
		readOpts.Sheet = opts.Sheet
	}
	if opts.ClientColumn != "" {
		readOpts.ClientColumn = opts.ClientColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open import file", err)
	}
	defer f.Close()

	source := filepath.Base(path)
	rows, err := importer.Read(source, f, readOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read import file", err)
	}
	s.out.VerboseLog("read %d rows from %s", len(rows), source)

	result, err := s.engine.Merge(cmd.Context(), rows, engine.MergeOptions{Source: source})
	if err != nil {
		return s.out.Fail("import", err)
	}

	return s.out.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "Imported %d update(s), skipped %d (batch %s)\n", result.Imported, result.Skipped, result.BatchID)
		for _, skip := range result.Skips {
			fmt.Fprintf(w, "  row %d: %s (%q)\n", skip.Position, skip.Reason, skip.Label)
		}
	})
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent imports",
		Long: `Show the audit log of merged import batches, newest first.

Example:
  updatelog history --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			batches, err := s.store.ImportBatches(cmd.Context(), limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read import history", err)
			}
			return s.out.Result(batches, func(w io.Writer) {
				printBatches(w, batches)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of batches to show (0 for all)")
	return cmd
}

func printBatches(w io.Writer, batches []record.ImportBatch) {
	if len(batches) == 0 {
		fmt.Fprintln(w, "No imports.")
		return
	}
	for _, b := range batches {
		fmt.Fprintf(w, "%s  %s  %s  imported=%d skipped=%d\n",
			b.CreatedAt.Format("2006-01-02 15:04:05"), b.ID, b.Source, b.Imported, b.Skipped)
	}
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out string
	IDs []int64
}

// ExportResult reports a written export file.
type ExportResult struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write updates to a CSV or XLSX file",
		Long: `Write updates grouped by client to a spreadsheet. The format follows
the --out extension (.csv or .xlsx).

Example:
  updatelog export --out meetings.xlsx
  updatelog export --out picked.csv --ids 3,7,9`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (required)")
	cmd.Flags().Int64SliceVar(&opts.IDs, "ids", nil, "only these update ids")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	renderer, err := export.ForFormat(filepath.Ext(opts.Out), s.cfg.Export.Sheet)
	if err != nil {
		return WrapExitError(ExitCommandError, "unsupported output file", err)
	}

	var filter record.Filter
	if cmd.Flags().Changed("ids") {
		filter.IDs = opts.IDs
	}

	groups, err := s.engine.Groups(cmd.Context(), filter)
	if err != nil {
		return s.out.Fail("export", err)
	}

	n := 0
	for _, g := range groups {
		n += len(g.Records)
	}
	if n == 0 {
		return NewExitError(ExitFailure, "no updates to export")
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	if err := renderer.Render(f, groups); err != nil {
		f.Close()
		return WrapExitError(ExitCommandError, "failed to render export", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output file", err)
	}

	result := ExportResult{Path: opts.Out, Records: n}
	return s.out.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "Exported %d update(s) to %s\n", n, opts.Out)
	})
}
