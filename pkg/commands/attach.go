package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"taskflow/pkg/database"
	"taskflow/pkg/state"
	"taskflow/pkg/task"
	"taskflow/pkg/utils"
)

// MaxAttachmentSize is the largest file accepted by attach
const MaxAttachmentSize = 10 << 20

// HandleAttach stores the file at path in the blob store and references it from the task
func HandleAttach(ctx context.Context, s *Session, id, path string) (task.Attachment, error) {
	t, err := s.ResolveID(id)
	if err != nil {
		return task.Attachment{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return task.Attachment{}, fmt.Errorf("attach %s: %w", path, err)
	}
	if info.IsDir() {
		return task.Attachment{}, &task.ValidationError{Field: "file", Message: "cannot attach a directory"}
	}
	if info.Size() > MaxAttachmentSize {
		return task.Attachment{}, &task.ValidationError{Field: "size", Message: fmt.Sprintf("file exceeds %d bytes", MaxAttachmentSize)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return task.Attachment{}, fmt.Errorf("read %s: %w", path, err)
	}

	mime := mimetype.Detect(data)
	a := task.Attachment{
		Name: filepath.Base(path),
		Size: int64(len(data)),
		Type: mime.String(),
	}

	ref, err := s.Blobs.Put(ctx, data, database.BlobMeta{Name: a.Name, Type: a.Type, Size: a.Size})
	if err != nil {
		return task.Attachment{}, err
	}
	a.Data = ref

	if err := s.Dispatch(state.AddAttachment{TaskID: t.ID, Attachment: a}); err != nil {
		return task.Attachment{}, err
	}

	// The reducer assigns the id, read it back from the stored task
	updated, _ := s.Store.State().FindTask(t.ID)
	stored := updated.Attachments[len(updated.Attachments)-1]
	utils.Log("Attached %s (%s) to task %s", stored.Name, stored.Type, t.ID)
	s.printf("Attached %s (%s, %d bytes) to task %s\n", stored.Name, stored.Type, stored.Size, shortID(t.ID))
	return stored, nil
}

// HandleDetach removes an attachment reference by name or id. The blob is
// reclaimed by the next "database prune".
func HandleDetach(s *Session, id, attachment string) error {
	t, err := s.ResolveID(id)
	if err != nil {
		return err
	}
	for _, a := range t.Attachments {
		if a.ID == attachment || a.Name == attachment {
			if err := s.Dispatch(state.DeleteAttachment{TaskID: t.ID, AttachmentID: a.ID}); err != nil {
				return err
			}
			s.printf("Removed %s from task %s\n", a.Name, shortID(t.ID))
			return nil
		}
	}
	return fmt.Errorf("attachment %q on task %s: %w", attachment, shortID(t.ID), state.ErrNotFound)
}

// HandleSaveAttachment writes the body of an attachment to dest
func HandleSaveAttachment(ctx context.Context, s *Session, id, attachment, dest string) error {
	t, err := s.ResolveID(id)
	if err != nil {
		return err
	}
	for _, a := range t.Attachments {
		if a.ID != attachment && a.Name != attachment {
			continue
		}
		data, _, err := s.Blobs.Get(ctx, a.Data)
		if err != nil {
			return err
		}
		if dest == "" {
			dest = a.Name
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
		s.printf("Saved %s to %s\n", a.Name, dest)
		return nil
	}
	return fmt.Errorf("attachment %q on task %s: %w", attachment, shortID(t.ID), state.ErrNotFound)
}
