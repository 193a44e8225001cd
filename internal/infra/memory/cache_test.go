package memory

import (
	"context"
	"testing"
	"time"

	"studybank/internal/backend"
	"studybank/internal/domain"
)

type countingBackend struct {
	backend.Backend
	folderLists   int
	questionLists int
}

func (c *countingBackend) ListFoldersByUser(ctx context.Context, userID string) ([]domain.Folder, error) {
	c.folderLists++
	return c.Backend.ListFoldersByUser(ctx, userID)
}

func (c *countingBackend) ListQuestionsByUser(ctx context.Context, userID string) ([]domain.Question, error) {
	c.questionLists++
	return c.Backend.ListQuestionsByUser(ctx, userID)
}

func TestCachingBackendServesListsFromCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingBackend{Backend: NewBackend()}
	cached := NewCachingBackend(inner, time.Minute)

	if _, err := cached.CreateFolder(ctx, "u1", domain.FolderDraft{Name: "Direito"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		folders, err := cached.ListFoldersByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(folders) != 1 {
			t.Fatalf("expected 1 folder, got %d", len(folders))
		}
	}
	if inner.folderLists != 1 {
		t.Fatalf("expected one inner list call, got %d", inner.folderLists)
	}
}

func TestCachingBackendInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	inner := &countingBackend{Backend: NewBackend()}
	cached := NewCachingBackend(inner, time.Minute)

	if _, err := cached.ListFoldersByUser(ctx, "u1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := cached.CreateFolder(ctx, "u1", domain.FolderDraft{Name: "Direito"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	folders, err := cached.ListFoldersByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("write must invalidate the cached list, got %d folders", len(folders))
	}
	if inner.folderLists != 2 {
		t.Fatalf("expected cache refill after write, got %d inner calls", inner.folderLists)
	}
}

func TestCachingBackendIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	inner := &countingBackend{Backend: NewBackend()}
	cached := NewCachingBackend(inner, time.Minute)

	if _, err := cached.CreateFolder(ctx, "u1", domain.FolderDraft{Name: "Direito"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	folders, err := cached.ListFoldersByUser(ctx, "u2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(folders) != 0 {
		t.Fatalf("u2 must not see u1 folders, got %+v", folders)
	}
}
