package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"studybank/internal/domain"
)

// Backend is a map-backed implementation of backend.Backend, used for tests
// and single-process demo deployments.
type Backend struct {
	mu    sync.RWMutex
	clock func() time.Time
	seq   int64

	folders   map[string]folderRecord
	questions map[string]questionRecord
}

// seq orders records created within the same clock tick so list results stay
// strictly newest-first.
type folderRecord struct {
	folder domain.Folder
	seq    int64
}

type questionRecord struct {
	question domain.Question
	seq      int64
}

func NewBackend() *Backend {
	return NewBackendWithClock(time.Now)
}

// NewBackendWithClock allows deterministic timestamps in tests.
func NewBackendWithClock(clock func() time.Time) *Backend {
	return &Backend{
		clock:     clock,
		folders:   make(map[string]folderRecord),
		questions: make(map[string]questionRecord),
	}
}

func (b *Backend) ListFoldersByUser(_ context.Context, userID string) ([]domain.Folder, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	records := make([]folderRecord, 0)
	for _, rec := range b.folders {
		if rec.folder.UserID == userID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })

	out := make([]domain.Folder, len(records))
	for i, rec := range records {
		out[i] = rec.folder
	}
	return out, nil
}

func (b *Backend) ListQuestionsByUser(_ context.Context, userID string) ([]domain.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	records := make([]questionRecord, 0)
	for _, rec := range b.questions {
		if rec.question.UserID == userID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })

	out := make([]domain.Question, len(records))
	for i, rec := range records {
		out[i] = rec.question
	}
	return out, nil
}

func (b *Backend) CreateFolder(_ context.Context, userID string, draft domain.FolderDraft) (domain.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	folder := domain.Folder{
		ID:          uuid.NewString(),
		Name:        draft.Name,
		Description: draft.Description,
		CreatedAt:   b.clock(),
		UserID:      userID,
	}
	b.folders[folder.ID] = folderRecord{folder: folder, seq: b.seq}
	return folder, nil
}

func (b *Backend) UpdateFolder(_ context.Context, userID, id string, draft domain.FolderDraft) (domain.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.folders[id]
	if !ok || rec.folder.UserID != userID {
		return domain.Folder{}, domain.ErrFolderNotFound
	}
	rec.folder.Name = draft.Name
	rec.folder.Description = draft.Description
	b.folders[id] = rec
	return rec.folder, nil
}

func (b *Backend) DeleteFolder(_ context.Context, userID, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.folders[id]
	if !ok || rec.folder.UserID != userID {
		return domain.ErrFolderNotFound
	}
	delete(b.folders, id)
	return nil
}

func (b *Backend) CreateQuestion(_ context.Context, userID string, draft domain.QuestionDraft) (domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	now := b.clock()
	question := domain.Question{
		ID:             uuid.NewString(),
		FolderID:       draft.FolderID,
		UserID:         userID,
		Title:          draft.Title,
		Type:           draft.Type,
		Options:        draft.Options,
		CorrectAnswer:  draft.CorrectAnswer,
		CorrectBoolean: draft.CorrectBoolean,
		Explanation:    draft.Explanation,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	b.questions[question.ID] = questionRecord{question: question, seq: b.seq}
	return question, nil
}

func (b *Backend) UpdateQuestion(_ context.Context, userID, id string, draft domain.QuestionDraft) (domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.questions[id]
	if !ok || rec.question.UserID != userID {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	q := rec.question
	q.FolderID = draft.FolderID
	q.Title = draft.Title
	q.Type = draft.Type
	q.Options = draft.Options
	q.CorrectAnswer = draft.CorrectAnswer
	q.CorrectBoolean = draft.CorrectBoolean
	q.Explanation = draft.Explanation
	q.UpdatedAt = b.clock()
	rec.question = q
	b.questions[id] = rec
	return q, nil
}

func (b *Backend) DeleteQuestion(_ context.Context, userID, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.questions[id]
	if !ok || rec.question.UserID != userID {
		return domain.ErrQuestionNotFound
	}
	delete(b.questions, id)
	return nil
}

func (b *Backend) DeleteQuestionsByFolder(_ context.Context, userID, folderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, rec := range b.questions {
		if rec.question.UserID == userID && rec.question.FolderID == folderID {
			delete(b.questions, id)
		}
	}
	return nil
}
