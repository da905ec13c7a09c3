package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technotes/server/internal/repo"
)

func newTestNoteService(t *testing.T) (*NoteService, *UserService) {
	t.Helper()
	r := repo.New(newTestDB(t))
	return &NoteService{Repo: r}, &UserService{Repo: r}
}

func TestNoteService_Create_AssignsSequentialTickets(t *testing.T) {
	t.Parallel()

	notes, users := newTestNoteService(t)
	ctx := context.Background()
	user, err := users.Create(ctx, "dave", "secret1", []string{"Employee"})
	require.NoError(t, err)

	first, err := notes.Create(ctx, NoteInput{UserID: user.ID, Title: "first", Text: "body"})
	require.NoError(t, err)
	second, err := notes.Create(ctx, NoteInput{UserID: user.ID, Title: "second", Text: "body"})
	require.NoError(t, err)

	assert.Equal(t, uint(1), first.Ticket)
	assert.Equal(t, uint(2), second.Ticket)
	assert.NotEmpty(t, first.ID)
}

func TestNoteService_Create_UnknownAssignee(t *testing.T) {
	t.Parallel()

	notes, _ := newTestNoteService(t)
	_, err := notes.Create(context.Background(), NoteInput{UserID: "ghost", Title: "t", Text: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNoteService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	notes, users := newTestNoteService(t)
	ctx := context.Background()
	user, err := users.Create(ctx, "dave", "secret1", []string{"Employee"})
	require.NoError(t, err)

	note, err := notes.Create(ctx, NoteInput{UserID: user.ID, Title: "draft", Text: "body"})
	require.NoError(t, err)

	updated, err := notes.Update(ctx, note.ID, NoteInput{
		UserID:    user.ID,
		Title:     "final",
		Text:      "body",
		Completed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.True(t, updated.Completed)
	assert.Equal(t, note.Ticket, updated.Ticket)

	_, err = notes.Delete(ctx, note.ID)
	require.NoError(t, err)

	_, err = notes.Get(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoteService_Search_Disabled(t *testing.T) {
	t.Parallel()

	notes, _ := newTestNoteService(t)
	_, _, err := notes.Search(context.Background(), "anything", 0, 10)
	assert.ErrorIs(t, err, ErrSearchDisabled)

	_, _, err = notes.Search(context.Background(), "", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}
