// Package redis implements the key-value persistence deployment: the full
// folder and question lists for a user are held as serialized records under
// per-user keys, read once on sign-in and rewritten on every change. No
// schema version is stored; a format change is a breaking change with no
// migration path.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studybank/internal/domain"
)

// Backend stores records as:
//
//	SET study:user:{userID}:folders   JSON([]domain.Folder)
//	SET study:user:{userID}:questions JSON([]domain.Question)
//
// Lists are kept newest-created-first on write, so reads return them
// directly. Mutations are read-modify-write cycles serialized by a local
// mutex; the deployment is single-process.
type Backend struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
	rnd    *rand.Rand
	mu     sync.Mutex
}

// NewBackend builds a Redis-backed store. A ttl of zero keeps records
// forever; a positive ttl expires idle users' data, with 10% jitter to
// spread expirations.
func NewBackend(client *redis.Client, ttl time.Duration) *Backend {
	return &Backend{
		client: client,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *Backend) ListFoldersByUser(ctx context.Context, userID string) ([]domain.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadFolders(ctx, userID)
}

func (b *Backend) ListQuestionsByUser(ctx context.Context, userID string) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadQuestions(ctx, userID)
}

func (b *Backend) CreateFolder(ctx context.Context, userID string, draft domain.FolderDraft) (domain.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	folders, err := b.loadFolders(ctx, userID)
	if err != nil {
		return domain.Folder{}, err
	}
	folder := domain.Folder{
		ID:          uuid.NewString(),
		Name:        draft.Name,
		Description: draft.Description,
		CreatedAt:   b.clock(),
		UserID:      userID,
	}
	folders = append([]domain.Folder{folder}, folders...)
	if err := b.saveFolders(ctx, userID, folders); err != nil {
		return domain.Folder{}, err
	}
	return folder, nil
}

func (b *Backend) UpdateFolder(ctx context.Context, userID, id string, draft domain.FolderDraft) (domain.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	folders, err := b.loadFolders(ctx, userID)
	if err != nil {
		return domain.Folder{}, err
	}
	for i := range folders {
		if folders[i].ID == id {
			folders[i].Name = draft.Name
			folders[i].Description = draft.Description
			if err := b.saveFolders(ctx, userID, folders); err != nil {
				return domain.Folder{}, err
			}
			return folders[i], nil
		}
	}
	return domain.Folder{}, domain.ErrFolderNotFound
}

func (b *Backend) DeleteFolder(ctx context.Context, userID, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	folders, err := b.loadFolders(ctx, userID)
	if err != nil {
		return err
	}
	kept := folders[:0]
	found := false
	for _, f := range folders {
		if f.ID == id {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return domain.ErrFolderNotFound
	}
	return b.saveFolders(ctx, userID, kept)
}

func (b *Backend) CreateQuestion(ctx context.Context, userID string, draft domain.QuestionDraft) (domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	questions, err := b.loadQuestions(ctx, userID)
	if err != nil {
		return domain.Question{}, err
	}
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
	questions = append([]domain.Question{question}, questions...)
	if err := b.saveQuestions(ctx, userID, questions); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

func (b *Backend) UpdateQuestion(ctx context.Context, userID, id string, draft domain.QuestionDraft) (domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	questions, err := b.loadQuestions(ctx, userID)
	if err != nil {
		return domain.Question{}, err
	}
	for i := range questions {
		if questions[i].ID == id {
			questions[i].FolderID = draft.FolderID
			questions[i].Title = draft.Title
			questions[i].Type = draft.Type
			questions[i].Options = draft.Options
			questions[i].CorrectAnswer = draft.CorrectAnswer
			questions[i].CorrectBoolean = draft.CorrectBoolean
			questions[i].Explanation = draft.Explanation
			questions[i].UpdatedAt = b.clock()
			if err := b.saveQuestions(ctx, userID, questions); err != nil {
				return domain.Question{}, err
			}
			return questions[i], nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (b *Backend) DeleteQuestion(ctx context.Context, userID, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	questions, err := b.loadQuestions(ctx, userID)
	if err != nil {
		return err
	}
	kept := questions[:0]
	found := false
	for _, q := range questions {
		if q.ID == id {
			found = true
			continue
		}
		kept = append(kept, q)
	}
	if !found {
		return domain.ErrQuestionNotFound
	}
	return b.saveQuestions(ctx, userID, kept)
}

func (b *Backend) DeleteQuestionsByFolder(ctx context.Context, userID, folderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	questions, err := b.loadQuestions(ctx, userID)
	if err != nil {
		return err
	}
	kept := questions[:0]
	for _, q := range questions {
		if q.FolderID != folderID {
			kept = append(kept, q)
		}
	}
	return b.saveQuestions(ctx, userID, kept)
}

func (b *Backend) loadFolders(ctx context.Context, userID string) ([]domain.Folder, error) {
	raw, err := b.client.Get(ctx, foldersKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load folders: %w", err)
	}
	var folders []domain.Folder
	if err := json.Unmarshal(raw, &folders); err != nil {
		return nil, fmt.Errorf("decode folders: %w", err)
	}
	return folders, nil
}

func (b *Backend) saveFolders(ctx context.Context, userID string, folders []domain.Folder) error {
	raw, err := json.Marshal(folders)
	if err != nil {
		return fmt.Errorf("encode folders: %w", err)
	}
	if err := b.client.Set(ctx, foldersKey(userID), raw, b.ttlWithJitter()).Err(); err != nil {
		return fmt.Errorf("save folders: %w", err)
	}
	return nil
}

func (b *Backend) loadQuestions(ctx context.Context, userID string) ([]domain.Question, error) {
	raw, err := b.client.Get(ctx, questionsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

func (b *Backend) saveQuestions(ctx context.Context, userID string, questions []domain.Question) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	if err := b.client.Set(ctx, questionsKey(userID), raw, b.ttlWithJitter()).Err(); err != nil {
		return fmt.Errorf("save questions: %w", err)
	}
	return nil
}

func foldersKey(userID string) string {
	return "study:user:" + userID + ":folders"
}

func questionsKey(userID string) string {
	return "study:user:" + userID + ":questions"
}

func (b *Backend) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
