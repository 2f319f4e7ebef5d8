package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/lorekeeper/internal/cli"
	"github.com/Veraticus/lorekeeper/internal/storage"
)

func snapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List and restore project database snapshots",
		Long: `With sqlite persistence, lorekeeper copies the project database before
every import. Use these commands to see the copies and roll an import back.`,
	}

	cmd.AddCommand(listSnapshotsCmd())
	cmd.AddCommand(restoreSnapshotCmd())

	return cmd
}

func listSnapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			snapshots, err := storage.ListSnapshots(storage.ProjectSnapshotDir(settings.ProjectPath))
			if err != nil {
				return err
			}
			printSnapshots(cmd.OutOrStdout(), snapshots)
			return nil
		},
	}
}

func restoreSnapshotCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore ID",
		Short: "Replace the project database with a snapshot",
		Long: `Replace the project database with a snapshot. Close the desktop app first.
The current database is kept next to it with a .before-restore suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				ok, err := cli.NewLineReader(cmd.InOrStdin()).Confirm(cmd.Context(), out,
					fmt.Sprintf("Restore %s over %s?", args[0], settings.ProjectPath))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Nothing was changed."))
					return nil
				}
			}

			if err := storage.RestoreSnapshot(settings.ProjectPath, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Restored %s", args[0])))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "restore without asking for confirmation")

	return cmd
}

func printSnapshots(out io.Writer, snapshots []storage.SnapshotInfo) {
	if len(snapshots) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No snapshots yet."))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Created"),
		headerStyle.Render("Entities"),
		headerStyle.Render("Description"))
	for _, s := range snapshots {
		fmt.Fprintf(w, "%s\t%s\t%d/%d/%d\t%s\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Characters, s.Locations, s.Lore, s.Description)
	}
}
