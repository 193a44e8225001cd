package domain

import "time"

// User is the authenticated owner of folders and questions. Identity is
// managed by the identity provider; the core only reads ID and Name.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Folder groups questions under a named subject.
type Folder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      string    `json:"userId"`
}

// QuestionType discriminates the two supported question shapes.
type QuestionType string

const (
	// MultipleChoice questions carry 2-5 options and a correct letter A-E.
	MultipleChoice QuestionType = "multiple"
	// BooleanJudgment questions carry a single correct true/false value.
	BooleanJudgment QuestionType = "boolean"
)

// Question is a single quiz item belonging to a folder.
type Question struct {
	ID       string       `json:"id"`
	FolderID string       `json:"folderId"`
	UserID   string       `json:"userId"`
	Title    string       `json:"title"`
	Type     QuestionType `json:"type"`

	// Multiple choice only.
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"` // "A".."E"

	// Boolean judgment only.
	CorrectBoolean *bool `json:"correctBoolean,omitempty"`

	Explanation string    `json:"explanation,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CorrectIndex returns the option index encoded by CorrectAnswer, or -1 if
// the letter is absent or out of range for the stored options.
func (q Question) CorrectIndex() int {
	if len(q.CorrectAnswer) != 1 {
		return -1
	}
	i := int(q.CorrectAnswer[0] - 'A')
	if i < 0 || i >= len(q.Options) {
		return -1
	}
	return i
}

// TimerMode is the run mode of a study session countdown.
type TimerMode string

const (
	TimerIdle    TimerMode = "idle"
	TimerRunning TimerMode = "running"
	TimerPaused  TimerMode = "paused"
)

// StudySession is the countdown state for a timed study run. It is never
// persisted; its lifetime is the lifetime of the view that created it.
type StudySession struct {
	FolderID         string    `json:"folderId"`
	DurationMinutes  int       `json:"durationMinutes"`
	RemainingSeconds int       `json:"remainingSeconds"`
	Mode             TimerMode `json:"mode"`
	StartedAt        time.Time `json:"startedAt,omitempty"`
}
