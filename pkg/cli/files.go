package cli

import (
	"github.com/spf13/cobra"

	"taskflow/pkg/commands"
	"taskflow/pkg/config"
)

var attachCmd = &cobra.Command{
	Use:   "attach <id> <file>",
	Short: "Attach a file to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
			s.Out = cmd.OutOrStdout()
			_, err := commands.HandleAttach(cmd.Context(), s, args[0], args[1])
			return err
		})
	},
}

var detachCmd = &cobra.Command{
	Use:   "remove <id> <attachment>",
	Short: "Remove an attachment from a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
			s.Out = cmd.OutOrStdout()
			return commands.HandleDetach(s, args[0], args[1])
		})
	},
}

var saveAttachmentCmd = &cobra.Command{
	Use:   "save <id> <attachment> [dest]",
	Short: "Write an attachment to disk",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := ""
		if len(args) == 3 {
			dest = args[2]
		}
		return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
			s.Out = cmd.OutOrStdout()
			return commands.HandleSaveAttachment(cmd.Context(), s, args[0], args[1], dest)
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export all tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exportType, _ := cmd.Flags().GetString("type")
		return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
			s.Out = cmd.OutOrStdout()
			return commands.HandleExportCommand(s, args[0], exportType)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tasks from a json, yaml or txt file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(_ config.Config, s *commands.Session) error {
			s.Out = cmd.OutOrStdout()
			_, err := commands.HandleImportCommand(s, args[0])
			return err
		})
	},
}

func init() {
	attachCmd.AddCommand(detachCmd)
	attachCmd.AddCommand(saveAttachmentCmd)

	exportCmd.Flags().String("type", "json", "Export file type (json, yaml, txt)")
}
