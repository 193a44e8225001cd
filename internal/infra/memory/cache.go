package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"studybank/internal/backend"
	"studybank/internal/domain"
)

// CachingBackend wraps a slower backend (typically Postgres) and caches
// per-user list results with TTL to avoid repeated hits on sign-in. Every
// write for a user passes through and invalidates that user's cached lists.
type CachingBackend struct {
	inner backend.Backend
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu        sync.RWMutex
	folders   map[string]cachedFolders
	questions map[string]cachedQuestions
}

type cachedFolders struct {
	folders   []domain.Folder
	expiresAt time.Time
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewCachingBackend(inner backend.Backend, ttl time.Duration) *CachingBackend {
	return &CachingBackend{
		inner:     inner,
		ttl:       ttl,
		clock:     time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		folders:   make(map[string]cachedFolders),
		questions: make(map[string]cachedQuestions),
	}
}

func (c *CachingBackend) ListFoldersByUser(ctx context.Context, userID string) ([]domain.Folder, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.folders[userID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.folders, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("folders:"+userID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.folders[userID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.folders, nil
		}
		c.mu.RUnlock()

		folders, err := c.inner.ListFoldersByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.folders[userID] = cachedFolders{folders: folders, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return folders, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Folder), nil
}

func (c *CachingBackend) ListQuestionsByUser(ctx context.Context, userID string) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.questions[userID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("questions:"+userID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.questions[userID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.inner.ListQuestionsByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.questions[userID] = cachedQuestions{questions: questions, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *CachingBackend) CreateFolder(ctx context.Context, userID string, draft domain.FolderDraft) (domain.Folder, error) {
	folder, err := c.inner.CreateFolder(ctx, userID, draft)
	if err == nil {
		c.invalidate(userID)
	}
	return folder, err
}

func (c *CachingBackend) UpdateFolder(ctx context.Context, userID, id string, draft domain.FolderDraft) (domain.Folder, error) {
	folder, err := c.inner.UpdateFolder(ctx, userID, id, draft)
	if err == nil {
		c.invalidate(userID)
	}
	return folder, err
}

func (c *CachingBackend) DeleteFolder(ctx context.Context, userID, id string) error {
	err := c.inner.DeleteFolder(ctx, userID, id)
	if err == nil {
		c.invalidate(userID)
	}
	return err
}

func (c *CachingBackend) CreateQuestion(ctx context.Context, userID string, draft domain.QuestionDraft) (domain.Question, error) {
	question, err := c.inner.CreateQuestion(ctx, userID, draft)
	if err == nil {
		c.invalidate(userID)
	}
	return question, err
}

func (c *CachingBackend) UpdateQuestion(ctx context.Context, userID, id string, draft domain.QuestionDraft) (domain.Question, error) {
	question, err := c.inner.UpdateQuestion(ctx, userID, id, draft)
	if err == nil {
		c.invalidate(userID)
	}
	return question, err
}

func (c *CachingBackend) DeleteQuestion(ctx context.Context, userID, id string) error {
	err := c.inner.DeleteQuestion(ctx, userID, id)
	if err == nil {
		c.invalidate(userID)
	}
	return err
}

func (c *CachingBackend) DeleteQuestionsByFolder(ctx context.Context, userID, folderID string) error {
	err := c.inner.DeleteQuestionsByFolder(ctx, userID, folderID)
	if err == nil {
		c.invalidate(userID)
	}
	return err
}

func (c *CachingBackend) invalidate(userID string) {
	c.mu.Lock()
	delete(c.folders, userID)
	delete(c.questions, userID)
	c.mu.Unlock()
}

func (c *CachingBackend) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
