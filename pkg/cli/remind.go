package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"taskflow/pkg/commands"
	"taskflow/pkg/config"
	"taskflow/pkg/reminder"
	"taskflow/pkg/utils"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the reminder scheduler without the UI",
	Long: `Run the reminder scheduler without the UI until interrupted.

The task list is re-read from the database on every scan, so tasks added
from other sessions are picked up. Reminders already sent are remembered for
the lifetime of the process only.`,
	Args: cobra.NoArgs,
	RunE: runRemind,
}

func init() {
	remindCmd.Flags().Bool("once", false, "Scan a single time, wait for deliveries and exit")
}

func runRemind(cmd *cobra.Command, args []string) error {
	once, _ := cmd.Flags().GetBool("once")

	return withSession(cmd.Context(), func(cfg config.Config, s *commands.Session) error {
		out := cmd.OutOrStdout()
		live := s.Bridge.Live(cmd.Context())
		sched := newScheduler(cfg, live, reminder.WithOnSent(sentPrinter(out)))

		if once {
			n := sched.Scan(cmd.Context())
			sched.Wait()
			utils.Log("Single reminder scan started %d deliveries", n)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(out, "Watching %d task(s) for reminders, press Ctrl+C to stop\n", len(live.Tasks()))
		err := sched.Run(ctx)
		sched.Wait()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

// sentPrinter reports confirmed deliveries on w. Deliveries finish on their own
// goroutines, so writes are serialized.
func sentPrinter(w io.Writer) func(reminder.Reminder) {
	var mu sync.Mutex
	return func(r reminder.Reminder) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "Reminder sent: %s (due %s)\n", r.Title, r.DueDate.Local().Format("2006-01-02 15:04"))
	}
}
