package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/technotes/server/internal/events"
	"github.com/technotes/server/internal/logging"
	"github.com/technotes/server/internal/models"
	"github.com/technotes/server/internal/repo"
	"github.com/technotes/server/internal/search"
)

// ErrSearchDisabled is returned when no Elasticsearch client is configured.
var ErrSearchDisabled = errors.New("note search is not configured")

type NoteService struct {
	Repo   *repo.GormRepo
	Events *events.Producer
	ES     *elasticsearch.Client
}

type NoteInput struct {
	UserID    string
	Title     string
	Text      string
	Completed bool
}

func (s *NoteService) List(ctx context.Context) ([]models.Note, error) {
	return s.Repo.ListNotes(ctx)
}

func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: note id is required", ErrValidation)
	}
	note, err := s.Repo.FindNoteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: note not found", ErrNotFound)
		}
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Create(ctx context.Context, in NoteInput) (*models.Note, error) {
	l := logging.FromContext(ctx).With("svc", "notes.create")

	if in.UserID == "" || in.Title == "" || in.Text == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if _, err := s.Repo.FindUserByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: assignee does not exist", ErrValidation)
		}
		return nil, err
	}

	note := models.Note{
		UserID:    in.UserID,
		Title:     in.Title,
		Text:      in.Text,
		Completed: in.Completed,
	}
	if err := s.Repo.CreateNote(ctx, &note); err != nil {
		return nil, err
	}

	s.index(ctx, &note)
	if err := s.Events.Publish(ctx, events.TopicNoteEvents, note.ID, map[string]any{
		"type":    "note_created",
		"note_id": note.ID,
		"user_id": note.UserID,
	}); err != nil {
		l.Error("event_publish_failed", "error", err)
	}
	l.Info("note_created", "note_id", note.ID, "ticket", note.Ticket)
	return &note, nil
}

func (s *NoteService) Update(ctx context.Context, id string, in NoteInput) (*models.Note, error) {
	l := logging.FromContext(ctx).With("svc", "notes.update", "note_id", id)

	if id == "" || in.UserID == "" || in.Title == "" || in.Text == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	note, err := s.Repo.FindNoteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: note not found", ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.Repo.FindUserByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: assignee does not exist", ErrValidation)
		}
		return nil, err
	}

	note.UserID = in.UserID
	note.Title = in.Title
	note.Text = in.Text
	note.Completed = in.Completed

	if err := s.Repo.SaveNote(ctx, note); err != nil {
		return nil, err
	}

	s.index(ctx, note)
	l.Info("note_updated")
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, id string) (*models.Note, error) {
	l := logging.FromContext(ctx).With("svc", "notes.delete", "note_id", id)

	if id == "" {
		return nil, fmt.Errorf("%w: note id is required", ErrValidation)
	}
	note, err := s.Repo.FindNoteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: note not found", ErrNotFound)
		}
		return nil, err
	}
	if err := s.Repo.DeleteNote(ctx, id); err != nil {
		return nil, err
	}

	if s.ES != nil {
		if err := search.DeleteNote(ctx, s.ES, search.NotesIndex, id); err != nil {
			l.Error("search_delete_failed", "error", err)
		}
	}
	if err := s.Events.Publish(ctx, events.TopicNoteEvents, note.ID, map[string]any{
		"type":    "note_deleted",
		"note_id": note.ID,
		"user_id": note.UserID,
	}); err != nil {
		l.Error("event_publish_failed", "error", err)
	}
	l.Info("note_deleted", "ticket", note.Ticket)
	return note, nil
}

// Search answers a full-text query over the notes index.
func (s *NoteService) Search(ctx context.Context, query string, from, size int) (int64, []models.Note, error) {
	if query == "" {
		return 0, nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	if s.ES == nil {
		return 0, nil, ErrSearchDisabled
	}
	return search.Notes(ctx, s.ES, search.NotesIndex, query, from, size)
}

// index keeps the search document in step with the store. Indexing
// failures are logged and swallowed: the note itself is already committed.
func (s *NoteService) index(ctx context.Context, note *models.Note) {
	if s.ES == nil {
		return
	}
	if err := search.IndexNote(ctx, s.ES, search.NotesIndex, note); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "note_id", note.ID, "error", err)
	}
}
