package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/impify/internal/client/api"
	"github.com/dmitrijs2005/impify/internal/client/client"
	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/state"
	"github.com/dmitrijs2005/impify/internal/logging"
)

// NotesService owns the user's note list.
type NotesService interface {
	Items() []models.Note
	Loading() bool
	// Fetch loads every note. On failure the list becomes empty and the
	// user is notified; no error is returned.
	Fetch(ctx context.Context)
	// Delete removes a note on the server and then locally. A second call
	// for the same id while the first is in flight returns
	// common.ErrOperationInProgress.
	Delete(ctx context.Context, id models.ID) error
	Collection() *state.Collection[models.Note]
}

type notesService struct {
	client   client.Client
	notifier Notifier
	log      logging.Logger
	items    *state.Collection[models.Note]
	loading  loadCounter
	guard    *Guard
}

func NewNotesService(c client.Client, n Notifier, log logging.Logger) NotesService {
	return &notesService{
		client:   c,
		notifier: n,
		log:      log.With("service", "notes"),
		items:    state.NewCollection[models.Note](),
		guard:    NewGuard(),
	}
}

func (s *notesService) Items() []models.Note                       { return s.items.Items() }
func (s *notesService) Loading() bool                              { return s.loading.active() }
func (s *notesService) Collection() *state.Collection[models.Note] { return s.items }

func (s *notesService) Fetch(ctx context.Context) {
	defer s.loading.begin()()

	var resp models.NotesResponse
	err := s.client.Do(ctx, http.MethodGet, api.Notes, nil, &resp)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.log.Error(ctx, "failed to load notes", "error", err)
		s.items.Set(nil)
		s.notifier.Error("Failed to load notes")
		return
	}
	s.items.Set(resp.Notes)
}

func (s *notesService) Delete(ctx context.Context, id models.ID) error {
	return deleteNote(ctx, s.client, s.guard, s.notifier, s.log, id, s.items)
}

// deleteNote is shared by the notes list and the upload pipeline.
func deleteNote(ctx context.Context, c client.Client, g *Guard, n Notifier, log logging.Logger, id models.ID, items *state.Collection[models.Note]) error {
	release, err := g.Acquire(string(id))
	if err != nil {
		n.Info("Delete already in progress")
		return err
	}
	defer release()

	err = c.Do(ctx, http.MethodDelete, api.NoteByID(string(id)), nil, nil)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		log.Error(ctx, "failed to delete note", "note_id", id, "error", err)
		n.Error("Failed to delete note")
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if items != nil {
		items.Remove(id)
	}
	n.Success("Note deleted successfully")
	return nil
}
