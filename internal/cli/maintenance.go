package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/updatelog/internal/harness"
	"github.com/roach88/updatelog/internal/record"
)

// NewRenumberCommand creates the renumber command.
func NewRenumberCommand(rootOpts *RootOptions) *cobra.Command {
	var client string

	cmd := &cobra.Command{
		Use:   "renumber",
		Short: "Rewrite update numbers as 1..N in arrival order",
		Long: `Rewrite each client's update numbers as 1, 2, 3, ... following arrival
order. This closes gaps left by deletes and client renames, and discards
manual reorders.

Example:
  updatelog renumber
  updatelog renumber --client "Acme"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.engine.Renumber(cmd.Context(), client)
			if err != nil {
				return s.out.Fail("renumber", err)
			}
			return s.out.Result(ChangeResult{Changed: n}, func(w io.Writer) {
				fmt.Fprintf(w, "Renumbered %d update(s)\n", n)
			})
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "only this client (exact label)")
	return cmd
}

// NewBackfillCommand creates the backfill command.
func NewBackfillCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Assign order fields to legacy records",
		Long: `Assign arrival order and first-appearance values to databases written
before those fields existed. Does nothing on an up-to-date database.

Example:
  updatelog backfill --db ./old.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.engine.Backfill(cmd.Context())
			if err != nil {
				return s.out.Fail("backfill", err)
			}
			return s.out.Result(ChangeResult{Changed: n}, func(w io.Writer) {
				if n == 0 {
					fmt.Fprintln(w, "Nothing to backfill")
					return
				}
				fmt.Fprintf(w, "Backfilled %d update(s)\n", n)
			})
		},
	}
	return cmd
}

// CheckResult lists ordering violations found in a database.
type CheckResult struct {
	Records    int                 `json:"records"`
	Violations []harness.Violation `json:"violations"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var contiguous bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the ordering fields of every update",
		Long: `Verify that arrival orders are unique, each client shares one
first-appearance value and update numbers are unique per client.

With --contiguous, update numbers must also be exactly 1..N per client, which
holds after renumber.

Exit codes:
  0 - No violations
  1 - One or more violations

Example:
  updatelog check --contiguous --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.engine.List(cmd.Context(), record.Filter{})
			if err != nil {
				return s.out.Fail("check", err)
			}

			violations := harness.CheckInvariants(records, contiguous)
			if violations == nil {
				violations = []harness.Violation{}
			}
			result := CheckResult{Records: len(records), Violations: violations}

			if len(violations) > 0 {
				if s.out.Format == "json" {
					_ = s.out.Error(CodeCheck, fmt.Sprintf("%d violation(s)", len(violations)), result)
				} else {
					for _, v := range violations {
						fmt.Fprintf(s.out.Writer, "✗ %s\n", v)
					}
				}
				return NewExitError(ExitFailure, fmt.Sprintf("%d ordering violation(s)", len(violations)))
			}

			return s.out.Result(result, func(w io.Writer) {
				fmt.Fprintf(w, "✓ %d update(s) checked, no violations\n", len(records))
			})
		},
	}

	cmd.Flags().BoolVar(&contiguous, "contiguous", false, "require update numbers 1..N per client")
	return cmd
}
