// Package backend defines the persistence contract the store controller
// depends on. Implementations live under internal/infra and are selected at
// startup: an in-memory map, a Redis key-value store holding whole per-user
// lists, or a Postgres relational store.
package backend

import (
	"context"

	"studybank/internal/domain"
)

// Backend persists folders and questions keyed by owning user. Every create
// and update returns the canonical persisted record (assigned id and
// timestamps); every list returns records ordered newest-created-first.
type Backend interface {
	// ListFoldersByUser returns all folders owned by userID, newest first.
	ListFoldersByUser(ctx context.Context, userID string) ([]domain.Folder, error)

	// ListQuestionsByUser returns all questions owned by userID, newest first.
	ListQuestionsByUser(ctx context.Context, userID string) ([]domain.Question, error)

	// CreateFolder persists a new folder for userID and returns the canonical record.
	CreateFolder(ctx context.Context, userID string, draft domain.FolderDraft) (domain.Folder, error)

	// UpdateFolder replaces the editable fields of the folder with the given id.
	// Returns domain.ErrFolderNotFound if it does not exist or is not owned by userID.
	UpdateFolder(ctx context.Context, userID, id string, draft domain.FolderDraft) (domain.Folder, error)

	// DeleteFolder removes the folder record only; dependent questions must be
	// removed first via DeleteQuestionsByFolder.
	DeleteFolder(ctx context.Context, userID, id string) error

	// CreateQuestion persists a new question for userID and returns the canonical record.
	CreateQuestion(ctx context.Context, userID string, draft domain.QuestionDraft) (domain.Question, error)

	// UpdateQuestion replaces the editable fields of the question with the given id.
	// Returns domain.ErrQuestionNotFound if it does not exist or is not owned by userID.
	UpdateQuestion(ctx context.Context, userID, id string, draft domain.QuestionDraft) (domain.Question, error)

	// DeleteQuestion removes a single question.
	DeleteQuestion(ctx context.Context, userID, id string) error

	// DeleteQuestionsByFolder removes every question whose folder id matches.
	DeleteQuestionsByFolder(ctx context.Context, userID, folderID string) error
}
