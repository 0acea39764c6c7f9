package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"taskflow/pkg/state"
	"taskflow/pkg/task"
)

// PurgeOptions select the tasks removed by "database purge"
type PurgeOptions struct {
	Date        string
	Category    string
	DoneOnly    bool
	UndoneOnly  bool
	SkipConfirm bool
}

// HandleDatabaseCommand processes the database subcommands
func HandleDatabaseCommand(ctx context.Context, s *Session, cmd string, opts PurgeOptions) error {
	switch cmd {
	case "purge":
		_, err := HandlePurge(ctx, s, opts)
		return err
	case "prune":
		_, err := HandlePrune(ctx, s)
		return err
	}
	return fmt.Errorf("unknown database command: %s", cmd)
}

// HandlePurge deletes the tasks matching opts, then reclaims their attachment blobs
func HandlePurge(ctx context.Context, s *Session, opts PurgeOptions) (int, error) {
	match, err := purgeMatcher(opts)
	if err != nil {
		return 0, err
	}

	var victims []task.Task
	for _, t := range s.Store.Tasks() {
		if match(t) {
			victims = append(victims, t)
		}
	}
	if len(victims) == 0 {
		s.printf("No matching tasks.\n")
		return 0, nil
	}

	// Show confirmation unless --yes flag is used
	if !opts.SkipConfirm {
		s.printf("Are you sure you want to delete %d task(s)? (y/N): ", len(victims))
		response, _ := bufio.NewReader(s.In).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			s.printf("Operation cancelled.\n")
			return 0, nil
		}
	}

	deleted := 0
	for _, t := range victims {
		if err := s.Dispatch(state.DeleteTask{ID: t.ID}); err != nil {
			return deleted, fmt.Errorf("purge task %s: %w", t.ID, err)
		}
		deleted++
	}
	s.printf("Successfully deleted %d task(s)\n", deleted)

	if _, err := HandlePrune(ctx, s); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// purgeMatcher builds the predicate for opts. No option matches every task.
func purgeMatcher(opts PurgeOptions) (func(task.Task) bool, error) {
	if opts.DoneOnly && opts.UndoneOnly {
		return nil, &task.ValidationError{Field: "done", Message: "--done and --undone are mutually exclusive"}
	}

	var day string
	if opts.Date != "" {
		d, err := parseDate(opts.Date)
		if err != nil {
			return nil, err
		}
		day = d.Format("2006-01-02")
	}

	return func(t task.Task) bool {
		if day != "" && (t.DueDate == nil || t.DueDate.Local().Format("2006-01-02") != day) {
			return false
		}
		if opts.Category != "" && t.Category != opts.Category {
			return false
		}
		if opts.DoneOnly && !t.Completed {
			return false
		}
		if opts.UndoneOnly && t.Completed {
			return false
		}
		return true
	}, nil
}

// HandlePrune deletes stored blobs no task references anymore
func HandlePrune(ctx context.Context, s *Session) (int, error) {
	keep := make(map[string]struct{})
	for _, t := range s.Store.Tasks() {
		for _, a := range t.Attachments {
			keep[a.Data] = struct{}{}
		}
	}

	removed, err := s.Blobs.Prune(ctx, keep)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.printf("Removed %d unreferenced attachment(s)\n", removed)
	}
	return removed, nil
}
