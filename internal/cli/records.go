package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/updatelog/internal/engine"
	"github.com/roach88/updatelog/internal/record"
)

// contentFlags binds the free-text fields of an update to flags.
type contentFlags struct {
	record.Content
}

func (c *contentFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&c.PeopleConnected, "people", "", "people connected")
	f.StringVar(&c.Actions, "actions", "", "actions")
	f.StringVar(&c.NextMeeting, "next-meeting", "", "next meeting")
	f.StringVar(&c.Address, "address", "", "address")
	f.StringVar(&c.ActionsTaken, "actions-taken", "", "actions taken")
	f.StringVar(&c.MeetingDate, "meeting-date", "", "meeting date")
}

// overlay copies the flags that were set onto base.
func (c *contentFlags) overlay(cmd *cobra.Command, base record.Content) record.Content {
	f := cmd.Flags()
	if f.Changed("people") {
		base.PeopleConnected = c.PeopleConnected
	}
	if f.Changed("actions") {
		base.Actions = c.Actions
	}
	if f.Changed("next-meeting") {
		base.NextMeeting = c.NextMeeting
	}
	if f.Changed("address") {
		base.Address = c.Address
	}
	if f.Changed("actions-taken") {
		base.ActionsTaken = c.ActionsTaken
	}
	if f.Changed("meeting-date") {
		base.MeetingDate = c.MeetingDate
	}
	return base
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var content contentFlags

	cmd := &cobra.Command{
		Use:   "create <client>",
		Short: "Record a new meeting update",
		Long: `Record a new meeting update for a client.

The update gets the next arrival order and the next update number for the
client. A client seen for the first time starts a new group.

Example:
  updatelog create "Acme" --people "Jane" --actions "Send quote"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.engine.Create(cmd.Context(), args[0], content.Content)
			if err != nil {
				return s.out.Fail("create", err)
			}
			return s.out.Result(r, func(w io.Writer) {
				fmt.Fprintf(w, "Created update %d for %s (update #%d)\n", r.ID, r.Client, r.ClientOrder)
			})
		},
	}

	content.register(cmd)
	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		content contentFlags
		client  string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a meeting update",
		Long: `Edit a meeting update. Only the given flags change.

Changing --client moves the update to the end of that client's group. The
group it left keeps its numbering until renumber is run.

Example:
  updatelog update 12 --actions "Quote sent"
  updatelog update 12 --client "Globex"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			cur, err := s.engine.Get(ctx, id)
			if err != nil {
				return s.out.Fail("update", err)
			}
			if !cmd.Flags().Changed("client") {
				client = cur.Client
			}

			r, err := s.engine.Update(ctx, id, client, content.overlay(cmd, cur.Content))
			if err != nil {
				return s.out.Fail("update", err)
			}
			return s.out.Result(r, func(w io.Writer) {
				fmt.Fprintf(w, "Updated %d: %s update #%d\n", r.ID, r.Client, r.ClientOrder)
			})
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "move the update to this client")
	content.register(cmd)
	return cmd
}

// DeleteResult reports how many updates a delete removed.
type DeleteResult struct {
	Deleted int `json:"deleted"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete meeting updates",
		Long: `Delete one or more meeting updates.

A single unknown id is an error. With several ids, unknown ones are ignored.
Update numbers of the remaining updates are not changed.

Example:
  updatelog delete 12
  updatelog delete 12 13 14`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var n int
			if len(ids) == 1 {
				n, err = s.engine.Delete(cmd.Context(), ids[0])
			} else {
				n, err = s.engine.BulkDelete(cmd.Context(), ids)
			}
			if err != nil {
				return s.out.Fail("delete", err)
			}
			return s.out.Result(DeleteResult{Deleted: n}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %d update(s)\n", n)
			})
		},
	}
	return cmd
}

// ChangeResult reports how many updates an ordering command rewrote.
type ChangeResult struct {
	Changed int `json:"changed"`
}

// NewReorderCommand creates the reorder command.
func NewReorderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <dragged-id> <target-id>",
		Short: "Move an update before another of the same client",
		Long: `Move an update to just before another update of the same client and
renumber the client's updates 1..N.

Example:
  updatelog reorder 14 11`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.engine.Reorder(cmd.Context(), ids[0], ids[1])
			if err != nil {
				return s.out.Fail("reorder", err)
			}
			return s.out.Result(ChangeResult{Changed: n}, func(w io.Writer) {
				fmt.Fprintf(w, "Reordered, %d update(s) renumbered\n", n)
			})
		},
	}
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var client string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List updates grouped by client",
		Long: `List updates grouped by client, clients in order of first appearance.

Example:
  updatelog list
  updatelog list --client acme --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			groups, err := s.engine.Groups(cmd.Context(), record.Filter{ClientContains: client})
			if err != nil {
				return s.out.Fail("list", err)
			}
			return s.out.Result(groups, func(w io.Writer) {
				printGroups(w, groups)
			})
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "only clients whose name contains this text")
	return cmd
}

func printGroups(w io.Writer, groups []engine.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No updates.")
		return
	}
	for _, g := range groups {
		fmt.Fprintln(w, g.Client)
		for _, r := range g.Records {
			fmt.Fprintf(w, "  #%-3d id=%-5d %s\n", r.ClientOrder, r.ID, r.Actions)
		}
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q", arg))
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
