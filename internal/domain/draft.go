package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Drafts carry the user-editable fields of a record. The store controller
// validates a draft locally before it is sent to the persistence backend;
// server-assigned fields (id, timestamps, owner) never appear here.

// FolderDraft is the editable portion of a Folder.
type FolderDraft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Normalize trims whitespace from all free-text fields.
func (d FolderDraft) Normalize() FolderDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	return d
}

// Validate reports the local validation errors that must block a create or
// update before any backend call is issued.
func (d FolderDraft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.By(notBlank)),
	)
}

// QuestionDraft is the editable portion of a Question.
type QuestionDraft struct {
	FolderID       string       `json:"folderId"`
	Title          string       `json:"title"`
	Type           QuestionType `json:"type"`
	Options        []string     `json:"options,omitempty"`
	CorrectAnswer  string       `json:"correctAnswer,omitempty"`
	CorrectBoolean *bool        `json:"correctBoolean,omitempty"`
	Explanation    string       `json:"explanation,omitempty"`
}

// Normalize trims free-text fields and canonicalizes the correct letter.
func (d QuestionDraft) Normalize() QuestionDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Explanation = strings.TrimSpace(d.Explanation)
	d.CorrectAnswer = strings.ToUpper(strings.TrimSpace(d.CorrectAnswer))
	if len(d.Options) > 0 {
		opts := make([]string, len(d.Options))
		for i, o := range d.Options {
			opts[i] = strings.TrimSpace(o)
		}
		d.Options = opts
	}
	return d
}

var correctLetterPattern = regexp.MustCompile(`^[A-E]$`)

// Validate checks the type-dependent field rules: multiple choice needs 2-5
// non-empty options and a correct letter indexing into them; boolean needs a
// correct value.
func (d QuestionDraft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.FolderID, validation.Required),
		validation.Field(&d.Title, validation.By(notBlank)),
		validation.Field(&d.Type, validation.Required, validation.In(MultipleChoice, BooleanJudgment)),
		validation.Field(&d.Options,
			validation.When(d.Type == MultipleChoice,
				validation.Required,
				validation.Length(2, 5),
				validation.Each(validation.By(notBlank)),
			),
			validation.When(d.Type == BooleanJudgment, validation.Empty),
		),
		validation.Field(&d.CorrectAnswer,
			validation.When(d.Type == MultipleChoice,
				validation.Required,
				validation.Match(correctLetterPattern),
				validation.By(d.letterInRange),
			),
		),
		validation.Field(&d.CorrectBoolean,
			validation.When(d.Type == BooleanJudgment, validation.NotNil),
		),
	)
}

func (d QuestionDraft) letterInRange(value interface{}) error {
	letter, _ := value.(string)
	if len(letter) != 1 {
		return nil // format already rejected by the pattern rule
	}
	if idx := int(letter[0] - 'A'); idx >= len(d.Options) {
		return fmt.Errorf("letter %s has no matching option", letter)
	}
	return nil
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}
