package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"studybank/internal/backend"
	"studybank/internal/domain"
	"studybank/internal/identity"
)

// Store owns the single domain state cell and mediates between the identity
// provider, the persistence backend, and the reducer. It loads the owner's
// records on sign-in, clears them on sign-out, and issues one persistence
// call per mutating intent, dispatching the backend's canonical record into
// the reducer only after the write is confirmed. State is therefore always
// the last confirmed write; a failed call leaves it untouched.
//
// Concurrent edits to the same record are not queued or merged: the last
// backend response to arrive wins in local state. No per-record version token
// is used; callers are expected to keep a single request outstanding per
// record.
type Store struct {
	backend backend.Backend
	log     *slog.Logger

	mu          sync.RWMutex
	state       State
	userID      string
	subscribers map[chan State]struct{}

	unsubscribe func()
}

// NewStore builds a store bound once to the given identity provider. If a
// session is already active it is loaded immediately. Call Close when the
// owning view goes away.
func NewStore(b backend.Backend, provider identity.Provider, log *slog.Logger) *Store {
	s := &Store{
		backend:     b,
		log:         log,
		subscribers: make(map[chan State]struct{}),
	}
	s.unsubscribe = provider.Subscribe(func(session identity.Session, ok bool) {
		if ok {
			s.onSessionStart(session.UserID)
		} else {
			s.onSessionEnd()
		}
	})
	if session, ok := provider.Current(); ok {
		s.onSessionStart(session.UserID)
	}
	return s
}

// Close detaches the store from the identity provider and closes all
// subscriber channels.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Lock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.mu.Unlock()
}

// Snapshot returns the current state value.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel receiving the current state immediately and a
// new snapshot after every transition. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.state
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// onSessionStart loads the user's records and replaces the state wholesale.
// A load failure leaves the empty state in place: the user sees an empty
// workspace rather than a crash.
func (s *Store) onSessionStart(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.state = Reduce(s.state, ResetAll{})
	s.broadcastLocked()
	s.mu.Unlock()

	ctx := context.Background()
	folders, err := s.backend.ListFoldersByUser(ctx, userID)
	if err != nil {
		s.log.Error("load folders failed", "userID", userID, "err", err)
		return
	}
	questions, err := s.backend.ListQuestionsByUser(ctx, userID)
	if err != nil {
		s.log.Error("load questions failed", "userID", userID, "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The session may have changed while the load was in flight; never leak
	// one user's records into another session.
	if s.userID != userID {
		return
	}
	s.state = Reduce(s.state, ReplaceFolders{Folders: folders})
	s.state = Reduce(s.state, ReplaceQuestions{Questions: questions})
	s.broadcastLocked()
}

func (s *Store) onSessionEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.state = Reduce(s.state, ResetAll{})
	s.broadcastLocked()
}

// CreateFolder validates the draft, persists it, and appends the canonical
// record returned by the backend.
func (s *Store) CreateFolder(ctx context.Context, draft domain.FolderDraft) (domain.Folder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return domain.Folder{}, err
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Folder{}, err
	}

	folder, err := s.backend.CreateFolder(ctx, userID, draft)
	if err != nil {
		s.log.Error("create folder failed", "userID", userID, "err", err)
		return domain.Folder{}, fmt.Errorf("create folder: %w", err)
	}
	s.dispatch(AddFolder{Folder: folder})
	return folder, nil
}

// UpdateFolder replaces the editable fields of an existing folder.
func (s *Store) UpdateFolder(ctx context.Context, id string, draft domain.FolderDraft) (domain.Folder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return domain.Folder{}, err
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Folder{}, err
	}
	if _, ok := s.folderByID(id); !ok {
		return domain.Folder{}, domain.ErrFolderNotFound
	}

	folder, err := s.backend.UpdateFolder(ctx, userID, id, draft)
	if err != nil {
		s.log.Error("update folder failed", "userID", userID, "folderID", id, "err", err)
		return domain.Folder{}, fmt.Errorf("update folder: %w", err)
	}
	s.dispatch(UpdateFolder{Folder: folder})
	return folder, nil
}

// DeleteFolder removes a folder and all of its questions. Questions are
// deleted at the backend first to respect referential constraints; locally
// the cascade happens in a single reducer transition. If the question delete
// succeeds but the folder delete fails, local state is left unchanged and
// backend and UI disagree for that folder until the next load; there is no
// compensating transaction.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	userID, err := s.currentUser()
	if err != nil {
		return err
	}
	if _, ok := s.folderByID(id); !ok {
		return domain.ErrFolderNotFound
	}

	if err := s.backend.DeleteQuestionsByFolder(ctx, userID, id); err != nil {
		s.log.Error("delete folder questions failed", "userID", userID, "folderID", id, "err", err)
		return fmt.Errorf("delete folder questions: %w", err)
	}
	if err := s.backend.DeleteFolder(ctx, userID, id); err != nil {
		s.log.Error("delete folder failed", "userID", userID, "folderID", id, "err", err)
		return fmt.Errorf("delete folder: %w", err)
	}
	s.dispatch(DeleteFolder{ID: id})
	return nil
}

// CreateQuestion validates the draft, checks that the target folder is owned
// by the current user, persists it, and appends the canonical record.
func (s *Store) CreateQuestion(ctx context.Context, draft domain.QuestionDraft) (domain.Question, error) {
	userID, err := s.currentUser()
	if err != nil {
		return domain.Question{}, err
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Question{}, err
	}
	if _, ok := s.folderByID(draft.FolderID); !ok {
		return domain.Question{}, domain.ErrFolderNotFound
	}

	question, err := s.backend.CreateQuestion(ctx, userID, draft)
	if err != nil {
		s.log.Error("create question failed", "userID", userID, "err", err)
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	s.dispatch(AddQuestion{Question: question})
	return question, nil
}

// UpdateQuestion replaces the editable fields of an existing question.
func (s *Store) UpdateQuestion(ctx context.Context, id string, draft domain.QuestionDraft) (domain.Question, error) {
	userID, err := s.currentUser()
	if err != nil {
		return domain.Question{}, err
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Question{}, err
	}
	if _, ok := s.questionByID(id); !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}

	question, err := s.backend.UpdateQuestion(ctx, userID, id, draft)
	if err != nil {
		s.log.Error("update question failed", "userID", userID, "questionID", id, "err", err)
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}
	s.dispatch(UpdateQuestion{Question: question})
	return question, nil
}

// DeleteQuestion removes a single question.
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	userID, err := s.currentUser()
	if err != nil {
		return err
	}
	if _, ok := s.questionByID(id); !ok {
		return domain.ErrQuestionNotFound
	}

	if err := s.backend.DeleteQuestion(ctx, userID, id); err != nil {
		s.log.Error("delete question failed", "userID", userID, "questionID", id, "err", err)
		return fmt.Errorf("delete question: %w", err)
	}
	s.dispatch(DeleteQuestion{ID: id})
	return nil
}

// FolderWithQuestions returns a folder and all of its questions from the
// current state, for export.
func (s *Store) FolderWithQuestions(id string) (domain.Folder, []domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var folder domain.Folder
	found := false
	for _, f := range s.state.Folders {
		if f.ID == id {
			folder = f
			found = true
			break
		}
	}
	if !found {
		return domain.Folder{}, nil, domain.ErrFolderNotFound
	}

	var questions []domain.Question
	for _, q := range s.state.Questions {
		if q.FolderID == id {
			questions = append(questions, q)
		}
	}
	return folder, questions, nil
}

func (s *Store) currentUser() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == "" {
		return "", domain.ErrNoSession
	}
	return s.userID, nil
}

func (s *Store) folderByID(id string) (domain.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.state.Folders {
		if f.ID == id {
			return f, true
		}
	}
	return domain.Folder{}, false
}

func (s *Store) questionByID(id string) (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.state.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

// dispatch applies one intent and broadcasts the resulting snapshot.
// Intents are applied in dispatch order under the state lock.
func (s *Store) dispatch(intent Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, intent)
	s.broadcastLocked()
}

func (s *Store) broadcastLocked() {
	for ch := range s.subscribers {
		select {
		case ch <- s.state:
		default:
			// Drop the stale snapshot so a slow reader never blocks dispatch.
			select {
			case <-ch:
			default:
			}
			ch <- s.state
		}
	}
}
