package cli

import (
	"github.com/spf13/cobra"

	"taskflow/pkg/commands"
	"taskflow/pkg/config"
)

var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Database maintenance",
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete tasks matching the given filters",
	Args:  cobra.NoArgs,
	RunE:  runPurge,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete attachment bodies no task references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
			s.Out = cmd.OutOrStdout()
			return commands.HandleDatabaseCommand(cmd.Context(), s, "prune", commands.PurgeOptions{})
		})
	},
}

func init() {
	databaseCmd.AddCommand(purgeCmd)
	databaseCmd.AddCommand(pruneCmd)

	purgeCmd.Flags().String("date", "", "Only tasks due on this day (YYYY-MM-DD)")
	purgeCmd.Flags().String("category", "", "Only tasks in this category")
	purgeCmd.Flags().Bool("done", false, "Only completed tasks")
	purgeCmd.Flags().Bool("undone", false, "Only pending tasks")
	purgeCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}

func runPurge(cmd *cobra.Command, args []string) error {
	opts := commands.PurgeOptions{}
	opts.Date, _ = cmd.Flags().GetString("date")
	opts.Category, _ = cmd.Flags().GetString("category")
	opts.DoneOnly, _ = cmd.Flags().GetBool("done")
	opts.UndoneOnly, _ = cmd.Flags().GetBool("undone")
	opts.SkipConfirm, _ = cmd.Flags().GetBool("yes")

	return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
		s.Out = cmd.OutOrStdout()
		s.In = cmd.InOrStdin()
		return commands.HandleDatabaseCommand(cmd.Context(), s, "purge", opts)
	})
}
