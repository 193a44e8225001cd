package app

import "studybank/internal/domain"

// State is the full in-memory domain state. Values are treated as immutable:
// every transition builds fresh slices so readers holding an older snapshot
// never observe a half-applied change.
type State struct {
	Folders   []domain.Folder      `json:"folders"`
	Questions []domain.Question    `json:"questions"`
	Timer     *domain.StudySession `json:"timer,omitempty"`
}

// Intent is a described state-change request applied by Reduce.
type Intent interface {
	isIntent()
}

// ReplaceFolders bulk-sets the folder list, used after a load. The caller is
// trusted to supply already-validated records.
type ReplaceFolders struct{ Folders []domain.Folder }

// ReplaceQuestions bulk-sets the question list, used after a load.
type ReplaceQuestions struct{ Questions []domain.Question }

// AddFolder appends a confirmed folder. Uniqueness of the id is the caller's
// responsibility.
type AddFolder struct{ Folder domain.Folder }

// AddQuestion appends a confirmed question.
type AddQuestion struct{ Question domain.Question }

// UpdateFolder replaces the folder whose id matches; no-op when absent.
type UpdateFolder struct{ Folder domain.Folder }

// UpdateQuestion replaces the question whose id matches; no-op when absent.
type UpdateQuestion struct{ Question domain.Question }

// DeleteFolder removes a folder and cascades to its questions in the same
// transition.
type DeleteFolder struct{ ID string }

// DeleteQuestion removes a single question.
type DeleteQuestion struct{ ID string }

// ResetAll returns the empty initial state, used on sign-out.
type ResetAll struct{}

func (ReplaceFolders) isIntent()   {}
func (ReplaceQuestions) isIntent() {}
func (AddFolder) isIntent()        {}
func (AddQuestion) isIntent()      {}
func (UpdateFolder) isIntent()     {}
func (UpdateQuestion) isIntent()   {}
func (DeleteFolder) isIntent()     {}
func (DeleteQuestion) isIntent()   {}
func (ResetAll) isIntent()         {}

// Reduce is the pure state-transition function. It is synchronous, has no
// side effects, and never mutates the previous state value.
func Reduce(s State, intent Intent) State {
	switch in := intent.(type) {
	case ReplaceFolders:
		s.Folders = in.Folders
		return s
	case ReplaceQuestions:
		s.Questions = in.Questions
		return s
	case AddFolder:
		folders := make([]domain.Folder, 0, len(s.Folders)+1)
		folders = append(folders, s.Folders...)
		s.Folders = append(folders, in.Folder)
		return s
	case AddQuestion:
		questions := make([]domain.Question, 0, len(s.Questions)+1)
		questions = append(questions, s.Questions...)
		s.Questions = append(questions, in.Question)
		return s
	case UpdateFolder:
		folders := make([]domain.Folder, len(s.Folders))
		for i, f := range s.Folders {
			if f.ID == in.Folder.ID {
				folders[i] = in.Folder
			} else {
				folders[i] = f
			}
		}
		s.Folders = folders
		return s
	case UpdateQuestion:
		questions := make([]domain.Question, len(s.Questions))
		for i, q := range s.Questions {
			if q.ID == in.Question.ID {
				questions[i] = in.Question
			} else {
				questions[i] = q
			}
		}
		s.Questions = questions
		return s
	case DeleteFolder:
		folders := make([]domain.Folder, 0, len(s.Folders))
		for _, f := range s.Folders {
			if f.ID != in.ID {
				folders = append(folders, f)
			}
		}
		questions := make([]domain.Question, 0, len(s.Questions))
		for _, q := range s.Questions {
			if q.FolderID != in.ID {
				questions = append(questions, q)
			}
		}
		s.Folders = folders
		s.Questions = questions
		return s
	case DeleteQuestion:
		questions := make([]domain.Question, 0, len(s.Questions))
		for _, q := range s.Questions {
			if q.ID != in.ID {
				questions = append(questions, q)
			}
		}
		s.Questions = questions
		return s
	case ResetAll:
		return State{}
	default:
		return s
	}
}
