package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError is returned when input is rejected before it reaches the reducer
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateNew checks a task about to be created
func ValidateNew(in NewTask) error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return structError(validate.Struct(in))
}

// ValidatePatch checks a partial task update
func ValidatePatch(p Patch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Message: "title cannot be empty"}
	}
	return structError(validate.Struct(p))
}

// ValidateTask checks a fully formed task, typically one decoded from a snapshot
func ValidateTask(t Task) error {
	if err := structError(validate.Struct(t)); err != nil {
		return fmt.Errorf("task %q: %w", t.ID, err)
	}
	if err := uniqueIDs("subtasks", len(t.Subtasks), func(i int) string { return t.Subtasks[i].ID }); err != nil {
		return fmt.Errorf("task %q: %w", t.ID, err)
	}
	if err := uniqueIDs("notes", len(t.Notes), func(i int) string { return t.Notes[i].ID }); err != nil {
		return fmt.Errorf("task %q: %w", t.ID, err)
	}
	if err := uniqueIDs("attachments", len(t.Attachments), func(i int) string { return t.Attachments[i].ID }); err != nil {
		return fmt.Errorf("task %q: %w", t.ID, err)
	}
	return nil
}

// ValidateFilter checks every field of a filter against its allowed values
func ValidateFilter(f Filter) error {
	if !f.Status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", f.Status)}
	}
	if f.Priority != All && !Priority(f.Priority).Valid() {
		return &ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority %q", f.Priority)}
	}
	if strings.TrimSpace(f.Category) == "" {
		return &ValidationError{Field: "category", Message: "category cannot be empty"}
	}
	if !f.SortBy.Valid() {
		return &ValidationError{Field: "sortBy", Message: fmt.Sprintf("invalid sort key %q", f.SortBy)}
	}
	if !f.SortOrder.Valid() {
		return &ValidationError{Field: "sortOrder", Message: fmt.Sprintf("invalid sort order %q", f.SortOrder)}
	}
	return nil
}

// ValidateFilterPatch checks only the fields a patch sets
func ValidateFilterPatch(p FilterPatch) error {
	// Merging into a valid filter isolates the fields the patch changes
	return ValidateFilter(p.Apply(DefaultFilter()))
}

func uniqueIDs(collection string, n int, id func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		if _, ok := seen[id(i)]; ok {
			return &ValidationError{Field: collection, Message: fmt.Sprintf("duplicate id %q", id(i))}
		}
		seen[id(i)] = struct{}{}
	}
	return nil
}

func structError(err error) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return &ValidationError{
			Field:   lowerFirst(fe.Field()),
			Message: fmt.Sprintf("failed %q check (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &ValidationError{Message: err.Error()}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
