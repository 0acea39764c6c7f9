package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"taskflow/pkg/commands"
	"taskflow/pkg/config"
	"taskflow/pkg/notify"
	"taskflow/pkg/reminder"
	"taskflow/pkg/state"
	"taskflow/pkg/ui"
	"taskflow/pkg/utils"
)

var (
	configPath   string
	databasePath string
	verbose      bool
	rootCmd      *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "taskflow",
		Short: "Taskflow - terminal task manager",
		Long: `Taskflow keeps a local task list with subtasks, notes, attachments and time tracking.

Without a subcommand it opens the interactive task list and sends due date reminders while it runs.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&databasePath, "database", "", "Database path or postgres:// URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

var registerOnce sync.Once

// registerCommands adds the subcommands after every package level command is initialized
func registerCommands() {
	registerOnce.Do(func() {
		rootCmd.AddCommand(addCmd)
		rootCmd.AddCommand(listCmd)
		rootCmd.AddCommand(doneCmd)
		rootCmd.AddCommand(deleteCmd)
		rootCmd.AddCommand(statsCmd)
		rootCmd.AddCommand(attachCmd)
		rootCmd.AddCommand(exportCmd)
		rootCmd.AddCommand(importCmd)
		rootCmd.AddCommand(databaseCmd)
		rootCmd.AddCommand(remindCmd)
	})
}

// Execute runs the root command
func Execute(version string) error {
	registerCommands()
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// setup loads the configuration and starts the logger. Callers must defer utils.CloseLogger.
func setup() (config.Config, error) {
	utils.InitLogger(verbose)

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if databasePath != "" {
		cfg.Database = databasePath
	}
	utils.Log("Using database %s", cfg.Database)
	return cfg, nil
}

// withSession runs fn against the configured task list
func withSession(ctx context.Context, fn func(cfg config.Config, s *commands.Session) error) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer utils.CloseLogger()

	s, err := commands.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(cfg, s)
}

// newScheduler wires the configured notifiers to a scheduler reading from source
func newScheduler(cfg config.Config, source reminder.TaskSource, opts ...reminder.Option) *reminder.Scheduler {
	email := notify.NewEmailNotifier(notify.EmailConfig{
		Endpoint:   cfg.Notifier.Endpoint,
		ServiceID:  cfg.Notifier.ServiceID,
		TemplateID: cfg.Notifier.TemplateID,
		UserID:     cfg.Notifier.UserID,
		Timeout:    cfg.Notifier.Timeout,
	})
	if !email.Configured() || cfg.Reminder.Email == "" {
		utils.Log("Email reminders are not configured; set notifier.user_id and reminder.email")
	}

	base := []reminder.Option{
		reminder.WithInterval(cfg.Reminder.Interval),
		reminder.WithWindow(cfg.Reminder.Window),
		reminder.WithRecipient(cfg.Reminder.Email),
		reminder.WithDesktop(notify.NewDesktop(cfg.Notifier.Desktop)),
	}
	return reminder.New(source, email, append(base, opts...)...)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(cfg config.Config, s *commands.Session) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var p *tea.Program
		sched := newScheduler(cfg, s.Store, reminder.WithOnSent(func(r reminder.Reminder) {
			go p.Send(ui.ReminderSentMsg{Reminder: r})
		}))

		p = tea.NewProgram(ui.NewModel(s.Store, cfg, sched), tea.WithAltScreen())

		// Program.Send blocks until the event loop reads it, never call it from inside Dispatch
		unsubscribe := s.Store.Subscribe(func(_, _ state.State) {
			go p.Send(ui.StateChangedMsg{})
		})
		defer unsubscribe()
		s.Bridge.OnSaveError(func(err error) {
			go p.Send(ui.SaveFailedMsg{Err: err})
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			sched.Run(ctx)
		}()

		_, err := p.Run()

		cancel()
		<-done
		sched.Wait()

		if err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	})
}
