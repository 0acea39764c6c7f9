package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"taskflow/pkg/commands"
	"taskflow/pkg/config"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Long: `Add a task. The title may carry inline markers:
  +tag       adds a tag
  @category  sets the category
  !priority  sets the priority (low, medium, high, urgent)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks using the saved filter, overridden by flags",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
			s.Out = cmd.OutOrStdout()
			return commands.HandleDone(s, args[0])
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task with its subtasks, notes and attachments",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
			s.Out = cmd.OutOrStdout()
			return commands.HandleDelete(s, args[0])
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
			s.Out = cmd.OutOrStdout()
			commands.HandleStats(s)
			return nil
		})
	},
}

func init() {
	addCmd.Flags().StringP("description", "d", "", "Description")
	addCmd.Flags().StringP("priority", "p", "", "Priority: low, medium, high, urgent")
	addCmd.Flags().StringP("category", "c", "", "Category")
	addCmd.Flags().String("date", "", "Due date (YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	addCmd.Flags().StringSliceP("tag", "t", nil, "Tags")
	addCmd.Flags().Int("estimate", 0, "Estimated minutes")

	listCmd.Flags().String("status", "", "Status: all, pending, completed")
	listCmd.Flags().String("priority", "", "Priority: all, low, medium, high, urgent")
	listCmd.Flags().String("category", "", "Category, or all")
	listCmd.Flags().StringSlice("tag", nil, "Show tasks carrying any of these tags")
	listCmd.Flags().String("sort", "", "Sort by: created, updated, priority, dueDate")
	listCmd.Flags().String("order", "", "Sort order: asc, desc")
}

func runAdd(cmd *cobra.Command, args []string) error {
	opts := commands.AddOptions{}
	opts.Description, _ = cmd.Flags().GetString("description")
	opts.Priority, _ = cmd.Flags().GetString("priority")
	opts.Category, _ = cmd.Flags().GetString("category")
	opts.Due, _ = cmd.Flags().GetString("date")
	opts.Tags, _ = cmd.Flags().GetStringSlice("tag")
	opts.Estimate, _ = cmd.Flags().GetInt("estimate")

	return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
		s.Out = cmd.OutOrStdout()
		_, err := commands.HandleAddTask(s, strings.Join(args, " "), opts)
		return err
	})
}

func runList(cmd *cobra.Command, args []string) error {
	opts := commands.ListOptions{}
	opts.Status, _ = cmd.Flags().GetString("status")
	opts.Priority, _ = cmd.Flags().GetString("priority")
	opts.Category, _ = cmd.Flags().GetString("category")
	opts.Tags, _ = cmd.Flags().GetStringSlice("tag")
	opts.SortBy, _ = cmd.Flags().GetString("sort")
	opts.SortOrder, _ = cmd.Flags().GetString("order")

	return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
		s.Out = cmd.OutOrStdout()
		_, err := commands.HandleList(s, opts)
		return err
	})
}
