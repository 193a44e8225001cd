package domain

import "testing"

func boolPtr(v bool) *bool { return &v }

func validMultipleChoice() QuestionDraft {
	return QuestionDraft{
		FolderID:      "f1",
		Title:         "Pick one",
		Type:          MultipleChoice,
		Options:       []string{"first", "second", "third"},
		CorrectAnswer: "B",
	}
}

func TestFolderDraftValidation(t *testing.T) {
	if err := (FolderDraft{Name: "Direito"}).Validate(); err != nil {
		t.Fatalf("valid folder rejected: %v", err)
	}
	if err := (FolderDraft{Name: "   "}.Normalize()).Validate(); err == nil {
		t.Fatalf("blank folder name accepted")
	}
}

func TestMultipleChoiceValidation(t *testing.T) {
	if err := validMultipleChoice().Validate(); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}

	d := validMultipleChoice()
	d.Options = []string{"only one"}
	d.CorrectAnswer = "A"
	if err := d.Validate(); err == nil {
		t.Fatalf("single option accepted")
	}

	d = validMultipleChoice()
	d.Options = []string{"a", "b", "c", "d", "e", "f"}
	if err := d.Validate(); err == nil {
		t.Fatalf("six options accepted")
	}

	d = validMultipleChoice()
	d.Options = []string{"a", "   ", "c"}
	if err := d.Validate(); err == nil {
		t.Fatalf("blank option accepted")
	}

	d = validMultipleChoice()
	d.CorrectAnswer = "F"
	if err := d.Validate(); err == nil {
		t.Fatalf("letter outside A-E accepted")
	}

	d = validMultipleChoice()
	d.Options = []string{"a", "b"}
	d.CorrectAnswer = "C"
	if err := d.Validate(); err == nil {
		t.Fatalf("letter beyond option count accepted")
	}
}

func TestBooleanJudgmentValidation(t *testing.T) {
	d := QuestionDraft{
		FolderID:       "f1",
		Title:          "True or false?",
		Type:           BooleanJudgment,
		CorrectBoolean: boolPtr(true),
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("valid boolean draft rejected: %v", err)
	}

	d.CorrectBoolean = nil
	if err := d.Validate(); err == nil {
		t.Fatalf("boolean question without correct value accepted")
	}

	d.CorrectBoolean = boolPtr(false)
	d.Options = []string{"a", "b"}
	if err := d.Validate(); err == nil {
		t.Fatalf("boolean question with options accepted")
	}
}

func TestNormalizeCanonicalizesFields(t *testing.T) {
	d := QuestionDraft{
		FolderID:      "f1",
		Title:         "  spaced  ",
		Type:          MultipleChoice,
		Options:       []string{" a ", "b "},
		CorrectAnswer: " a ",
	}.Normalize()

	if d.Title != "spaced" {
		t.Fatalf("title not trimmed: %q", d.Title)
	}
	if d.Options[0] != "a" || d.Options[1] != "b" {
		t.Fatalf("options not trimmed: %v", d.Options)
	}
	if d.CorrectAnswer != "A" {
		t.Fatalf("correct letter not canonicalized: %q", d.CorrectAnswer)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("normalized draft rejected: %v", err)
	}
}

func TestCorrectIndexBounds(t *testing.T) {
	q := Question{Options: []string{"a", "b"}, CorrectAnswer: "B"}
	if got := q.CorrectIndex(); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	q.CorrectAnswer = "C"
	if got := q.CorrectIndex(); got != -1 {
		t.Fatalf("expected -1 for out-of-range letter, got %d", got)
	}
	q.CorrectAnswer = ""
	if got := q.CorrectIndex(); got != -1 {
		t.Fatalf("expected -1 for empty letter, got %d", got)
	}
}
