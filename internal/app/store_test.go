package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"studybank/internal/app"
	"studybank/internal/backend"
	"studybank/internal/domain"
	"studybank/internal/identity"
	"studybank/internal/infra/memory"
)

func newTestStore(t *testing.T, b backend.Backend) (*app.Store, *identity.MemoryProvider) {
	t.Helper()
	provider := identity.NewMemoryProvider()
	store := app.NewStore(b, provider, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(store.Close)
	return store, provider
}

func boolPtr(v bool) *bool { return &v }

func TestCreateAnswerDeleteScenario(t *testing.T) {
	ctx := context.Background()
	store, provider := newTestStore(t, memory.NewBackend())
	provider.SignIn("u1", "Alice")

	folder, err := store.CreateFolder(ctx, domain.FolderDraft{Name: "Direito"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	if folder.ID == "" || folder.UserID != "u1" {
		t.Fatalf("expected canonical folder record, got %+v", folder)
	}

	question, err := store.CreateQuestion(ctx, domain.QuestionDraft{
		FolderID:      folder.ID,
		Title:         "Qual é a capital?",
		Type:          domain.MultipleChoice,
		Options:       []string{"a", "b"},
		CorrectAnswer: "A",
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if question.CorrectIndex() != 0 {
		t.Fatalf("expected correct index 0, got %d", question.CorrectIndex())
	}

	state := store.Snapshot()
	if len(state.Folders) != 1 || len(state.Questions) != 1 {
		t.Fatalf("expected 1 folder and 1 question, got %d/%d", len(state.Folders), len(state.Questions))
	}

	if err := store.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatalf("delete folder: %v", err)
	}
	state = store.Snapshot()
	if len(state.Folders) != 0 || len(state.Questions) != 0 {
		t.Fatalf("expected empty state after cascade delete, got %d/%d", len(state.Folders), len(state.Questions))
	}
}

func TestSignOutResetsAndUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	b := memory.NewBackend()
	store, provider := newTestStore(t, b)

	provider.SignIn("u1", "Alice")
	if _, err := store.CreateFolder(ctx, domain.FolderDraft{Name: "Direito"}); err != nil {
		t.Fatalf("create folder: %v", err)
	}

	provider.SignOut()
	if state := store.Snapshot(); len(state.Folders) != 0 {
		t.Fatalf("expected reset on sign-out, got %+v", state.Folders)
	}

	provider.SignIn("u2", "Bob")
	if state := store.Snapshot(); len(state.Folders) != 0 {
		t.Fatalf("u2 must not see u1 folders, got %+v", state.Folders)
	}

	provider.SignIn("u1", "Alice")
	if state := store.Snapshot(); len(state.Folders) != 1 {
		t.Fatalf("expected u1 folders reloaded, got %+v", state.Folders)
	}
}

func TestMutationsRequireSession(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, memory.NewBackend())

	if _, err := store.CreateFolder(ctx, domain.FolderDraft{Name: "Direito"}); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

// spyBackend records calls while delegating to the wrapped backend.
type spyBackend struct {
	backend.Backend
	calls []string
	fail  map[string]error
}

func (s *spyBackend) record(op string) error {
	s.calls = append(s.calls, op)
	if s.fail != nil {
		return s.fail[op]
	}
	return nil
}

func (s *spyBackend) CreateFolder(ctx context.Context, userID string, draft domain.FolderDraft) (domain.Folder, error) {
	if err := s.record("CreateFolder"); err != nil {
		return domain.Folder{}, err
	}
	return s.Backend.CreateFolder(ctx, userID, draft)
}

func (s *spyBackend) CreateQuestion(ctx context.Context, userID string, draft domain.QuestionDraft) (domain.Question, error) {
	if err := s.record("CreateQuestion"); err != nil {
		return domain.Question{}, err
	}
	return s.Backend.CreateQuestion(ctx, userID, draft)
}

func (s *spyBackend) DeleteFolder(ctx context.Context, userID, id string) error {
	if err := s.record("DeleteFolder"); err != nil {
		return err
	}
	return s.Backend.DeleteFolder(ctx, userID, id)
}

func (s *spyBackend) DeleteQuestionsByFolder(ctx context.Context, userID, folderID string) error {
	if err := s.record("DeleteQuestionsByFolder"); err != nil {
		return err
	}
	return s.Backend.DeleteQuestionsByFolder(ctx, userID, folderID)
}

func (s *spyBackend) count(op string) int {
	n := 0
	for _, c := range s.calls {
		if c == op {
			n++
		}
	}
	return n
}

func TestValidationBlocksBackendCall(t *testing.T) {
	ctx := context.Background()
	spy := &spyBackend{Backend: memory.NewBackend()}
	store, provider := newTestStore(t, spy)
	provider.SignIn("u1", "Alice")

	folder, err := store.CreateFolder(ctx, domain.FolderDraft{Name: "Direito"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}

	_, err = store.CreateQuestion(ctx, domain.QuestionDraft{
		FolderID:      folder.ID,
		Title:         "too few options",
		Type:          domain.MultipleChoice,
		Options:       []string{"only one"},
		CorrectAnswer: "A",
	})
	if err == nil {
		t.Fatalf("expected validation error for single-option question")
	}
	if n := spy.count("CreateQuestion"); n != 0 {
		t.Fatalf("validation error must not reach the backend, saw %d calls", n)
	}

	if _, err := store.CreateFolder(ctx, domain.FolderDraft{Name: "   "}); err == nil {
		t.Fatalf("expected validation error for blank folder name")
	}
	if n := spy.count("CreateFolder"); n != 1 {
		t.Fatalf("expected only the valid create to reach the backend, saw %d", n)
	}
}

func TestBackendErrorLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	spy := &spyBackend{
		Backend: memory.NewBackend(),
		fail:    map[string]error{"CreateFolder": errors.New("connection refused")},
	}
	store, provider := newTestStore(t, spy)
	provider.SignIn("u1", "Alice")

	if _, err := store.CreateFolder(ctx, domain.FolderDraft{Name: "Direito"}); err == nil {
		t.Fatalf("expected backend error")
	}
	if state := store.Snapshot(); len(state.Folders) != 0 {
		t.Fatalf("state must reflect only confirmed writes, got %+v", state.Folders)
	}
}

func TestDeleteFolderOrdersBackendCalls(t *testing.T) {
	ctx := context.Background()
	spy := &spyBackend{Backend: memory.NewBackend()}
	store, provider := newTestStore(t, spy)
	provider.SignIn("u1", "Alice")

	folder, err := store.CreateFolder(ctx, domain.FolderDraft{Name: "Direito"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	if err := store.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatalf("delete folder: %v", err)
	}

	var deletes []string
	for _, c := range spy.calls {
		if c == "DeleteQuestionsByFolder" || c == "DeleteFolder" {
			deletes = append(deletes, c)
		}
	}
	want := []string{"DeleteQuestionsByFolder", "DeleteFolder"}
	if len(deletes) != 2 || deletes[0] != want[0] || deletes[1] != want[1] {
		t.Fatalf("expected question delete before folder delete, got %v", deletes)
	}
}

func TestFailedFolderDeleteKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	spy := &spyBackend{
		Backend: memory.NewBackend(),
		fail:    map[string]error{"DeleteFolder": errors.New("constraint violation")},
	}
	store, provider := newTestStore(t, spy)
	provider.SignIn("u1", "Alice")

	folder, err := store.CreateFolder(ctx, domain.FolderDraft{Name: "Direito"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	if _, err := store.CreateQuestion(ctx, domain.QuestionDraft{
		FolderID:       folder.ID,
		Title:          "still here",
		Type:           domain.BooleanJudgment,
		CorrectBoolean: boolPtr(true),
	}); err != nil {
		t.Fatalf("create question: %v", err)
	}

	if err := store.DeleteFolder(ctx, folder.ID); err == nil {
		t.Fatalf("expected delete failure")
	}
	state := store.Snapshot()
	if len(state.Folders) != 1 || len(state.Questions) != 1 {
		t.Fatalf("partial delete must not change local state, got %d/%d", len(state.Folders), len(state.Questions))
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	ctx := context.Background()
	store, provider := newTestStore(t, memory.NewBackend())
	provider.SignIn("u1", "Alice")

	states, cancel := store.Subscribe()
	defer cancel()

	initial := <-states
	if len(initial.Folders) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial.Folders)
	}

	if _, err := store.CreateFolder(ctx, domain.FolderDraft{Name: "Direito"}); err != nil {
		t.Fatalf("create folder: %v", err)
	}

	for state := range states {
		if len(state.Folders) == 1 {
			return
		}
	}
	t.Fatalf("never observed snapshot with created folder")
}
