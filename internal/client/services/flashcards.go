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

// FlashcardsService owns the user's flashcards. Cards are generated on the
// server, so the client only lists and deletes them.
type FlashcardsService interface {
	Items() []models.Flashcard
	Loading() bool
	Fetch(ctx context.Context)
	Delete(ctx context.Context, id models.ID) error
	Collection() *state.Collection[models.Flashcard]
}

type flashcardsService struct {
	client   client.Client
	notifier Notifier
	log      logging.Logger
	items    *state.Collection[models.Flashcard]
	loading  loadCounter
	guard    *Guard
}

func NewFlashcardsService(c client.Client, n Notifier, log logging.Logger) FlashcardsService {
	return &flashcardsService{
		client:   c,
		notifier: n,
		log:      log.With("service", "flashcards"),
		items:    state.NewCollection[models.Flashcard](),
		guard:    NewGuard(),
	}
}

func (s *flashcardsService) Items() []models.Flashcard { return s.items.Items() }
func (s *flashcardsService) Loading() bool             { return s.loading.active() }
func (s *flashcardsService) Collection() *state.Collection[models.Flashcard] {
	return s.items
}

func (s *flashcardsService) Fetch(ctx context.Context) {
	defer s.loading.begin()()

	var resp models.FlashcardsResponse
	err := s.client.Do(ctx, http.MethodGet, api.Flashcards, nil, &resp)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.log.Error(ctx, "failed to load flashcards", "error", err)
		s.items.Set(nil)
		s.notifier.Error("Failed to load flashcards")
		return
	}
	s.items.Set(resp.Flashcards)
}

func (s *flashcardsService) Delete(ctx context.Context, id models.ID) error {
	release, err := s.guard.Acquire(string(id))
	if err != nil {
		s.notifier.Info("Delete already in progress")
		return err
	}
	defer release()

	err = s.client.Do(ctx, http.MethodDelete, api.FlashcardByID(string(id)), nil, nil)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.log.Error(ctx, "failed to delete flashcard", "flashcard_id", id, "error", err)
		s.notifier.Error("Failed to delete flashcard")
		return fmt.Errorf("delete flashcard %s: %w", id, err)
	}
	s.items.Remove(id)
	s.notifier.Success("Flashcard deleted")
	return nil
}
