package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/impify/internal/client/api"
	"github.com/dmitrijs2005/impify/internal/client/client"
	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/state"
	"github.com/dmitrijs2005/impify/internal/logging"
)

var (
	ErrInvalidFolderName  = errors.New("folder name is required")
	ErrInvalidFolderColor = errors.New("unknown folder color")
)

// FoldersService owns the folder list. Membership is never joined locally:
// every membership change is a server round-trip.
type FoldersService interface {
	Items() []models.Folder
	Loading() bool
	Fetch(ctx context.Context)
	// Create appends the server's canonical folder on success.
	Create(ctx context.Context, in models.FolderInput) (*models.Folder, error)
	// Update replaces the folder with matching id on success.
	Update(ctx context.Context, id models.ID, in models.FolderInput) (*models.Folder, error)
	Delete(ctx context.Context, id models.ID) error
	MoveNote(ctx context.Context, noteID, folderID models.ID) error
	// BulkAdd reports added and skipped note ids separately.
	BulkAdd(ctx context.Context, folderID models.ID, noteIDs []models.ID) (*models.BulkAddResult, error)
	// FolderNotes degrades to an empty list on failure.
	FolderNotes(ctx context.Context, folderID models.ID) []models.Note
	Collection() *state.Collection[models.Folder]
}

type foldersService struct {
	client   client.Client
	notifier Notifier
	log      logging.Logger
	items    *state.Collection[models.Folder]
	loading  loadCounter
	guard    *Guard
}

func NewFoldersService(c client.Client, n Notifier, log logging.Logger) FoldersService {
	return &foldersService{
		client:   c,
		notifier: n,
		log:      log.With("service", "folders"),
		items:    state.NewCollection[models.Folder](),
		guard:    NewGuard(),
	}
}

func (s *foldersService) Items() []models.Folder                       { return s.items.Items() }
func (s *foldersService) Loading() bool                                { return s.loading.active() }
func (s *foldersService) Collection() *state.Collection[models.Folder] { return s.items }

// normalizeFolderInput trims the name and defaults an empty color to blue.
func normalizeFolderInput(in models.FolderInput) (models.FolderInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrInvalidFolderName
	}
	if in.Color == "" {
		in.Color = models.FolderColors[0]
	}
	if !in.Color.Valid() {
		return in, fmt.Errorf("%w: %q", ErrInvalidFolderColor, in.Color)
	}
	return in, nil
}

func (s *foldersService) Fetch(ctx context.Context) {
	defer s.loading.begin()()

	var resp models.FoldersResponse
	err := s.client.Do(ctx, http.MethodGet, api.Folders, nil, &resp)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.log.Error(ctx, "failed to fetch folders", "error", err)
		s.items.Set(nil)
		s.notifier.Error("Failed to load folders")
		return
	}
	s.items.Set(resp.Folders)
}

func (s *foldersService) Create(ctx context.Context, in models.FolderInput) (*models.Folder, error) {
	in, err := normalizeFolderInput(in)
	if err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}

	var resp models.FolderResponse
	err = s.client.Do(ctx, http.MethodPost, api.Folders, in, &resp)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		s.log.Error(ctx, "failed to create folder", "error", err)
		s.notifier.Error("Failed to create folder")
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.items.Append(resp.Folder)
	s.notifier.Success("Folder created successfully")
	return &resp.Folder, nil
}

func (s *foldersService) Update(ctx context.Context, id models.ID, in models.FolderInput) (*models.Folder, error) {
	in, err := normalizeFolderInput(in)
	if err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}

	release, err := s.guard.Acquire(string(id))
	if err != nil {
		return nil, err
	}
	defer release()

	var resp models.FolderResponse
	err = s.client.Do(ctx, http.MethodPut, api.FolderByID(string(id)), in, &resp)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		s.log.Error(ctx, "failed to update folder", "folder_id", id, "error", err)
		s.notifier.Error("Failed to update folder")
		return nil, fmt.Errorf("update folder %s: %w", id, err)
	}

	s.items.Replace(id, resp.Folder)
	s.notifier.Success("Folder updated successfully")
	return &resp.Folder, nil
}

func (s *foldersService) Delete(ctx context.Context, id models.ID) error {
	release, err := s.guard.Acquire(string(id))
	if err != nil {
		s.notifier.Info("Delete already in progress")
		return err
	}
	defer release()

	err = s.client.Do(ctx, http.MethodDelete, api.FolderByID(string(id)), nil, nil)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.log.Error(ctx, "failed to delete folder", "folder_id", id, "error", err)
		s.notifier.Error("Failed to delete folder")
		return fmt.Errorf("delete folder %s: %w", id, err)
	}

	s.items.Remove(id)
	s.notifier.Success("Folder deleted successfully")
	return nil
}

func (s *foldersService) MoveNote(ctx context.Context, noteID, folderID models.ID) error {
	err := s.client.Do(ctx, http.MethodPost, api.FolderMoveNote(string(folderID), string(noteID)), nil, nil)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.log.Error(ctx, "failed to move note", "note_id", noteID, "folder_id", folderID, "error", err)
		s.notifier.Error("Failed to move note")
		return fmt.Errorf("move note %s: %w", noteID, err)
	}
	s.notifier.Success("Note moved to folder")
	return nil
}

func (s *foldersService) BulkAdd(ctx context.Context, folderID models.ID, noteIDs []models.ID) (*models.BulkAddResult, error) {
	var res models.BulkAddResult
	err := s.client.Do(ctx, http.MethodPost, api.FolderBulkAddNotes(string(folderID)),
		models.BulkAddRequest{NoteIDs: noteIDs}, &res)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		s.log.Error(ctx, "failed to bulk add notes", "folder_id", folderID, "error", err)
		s.notifier.Error("Failed to add notes to folder")
		return nil, fmt.Errorf("bulk add to folder %s: %w", folderID, err)
	}

	if len(res.Added) > 0 {
		s.notifier.Success(fmt.Sprintf("Added %d notes to folder", len(res.Added)))
	}
	if len(res.Skipped) > 0 {
		s.notifier.Info(fmt.Sprintf("Skipped %d notes (already in folder or not found)", len(res.Skipped)))
	}
	return &res, nil
}

func (s *foldersService) FolderNotes(ctx context.Context, folderID models.ID) []models.Note {
	var resp models.NotesResponse
	err := s.client.Do(ctx, http.MethodGet, api.FolderNotes(string(folderID)), nil, &resp)
	if ctx.Err() != nil {
		return []models.Note{}
	}
	if err != nil {
		s.log.Error(ctx, "failed to fetch folder notes", "folder_id", folderID, "error", err)
		s.notifier.Error("Failed to load folder notes")
		return []models.Note{}
	}
	if resp.Notes == nil {
		return []models.Note{}
	}
	return resp.Notes
}
