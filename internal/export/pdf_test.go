package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"studybank/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

func TestToPDFRendersDocument(t *testing.T) {
	folder := domain.Folder{
		ID:          "f1",
		Name:        "Direito Constitucional",
		Description: "Questões para revisão",
		CreatedAt:   time.Unix(1700000000, 0),
	}
	questions := []domain.Question{
		{
			ID:            "q1",
			FolderID:      "f1",
			Title:         "Qual é a capital do Brasil?",
			Type:          domain.MultipleChoice,
			Options:       []string{"São Paulo", "Brasília", "Rio de Janeiro"},
			CorrectAnswer: "B",
			Explanation:   "Brasília desde 1960.",
		},
		{
			ID:             "q2",
			FolderID:       "f1",
			Title:          "A constituição é de 1988.",
			Type:           domain.BooleanJudgment,
			CorrectBoolean: boolPtr(true),
		},
	}

	var buf bytes.Buffer
	if err := ToPDF(&buf, folder, questions); err != nil {
		t.Fatalf("render: %v", err)
	}

	out := buf.Bytes()
	if !strings.HasPrefix(string(out), "%PDF") {
		t.Fatalf("output is not a PDF, starts with %q", out[:min(8, len(out))])
	}
	if len(out) < 1000 {
		t.Fatalf("suspiciously small document: %d bytes", len(out))
	}
}

func TestToPDFHandlesEmptyFolder(t *testing.T) {
	var buf bytes.Buffer
	if err := ToPDF(&buf, domain.Folder{ID: "f1", Name: "Vazio"}, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Fatalf("output is not a PDF")
	}
}

func TestToPDFPaginatesLongFolders(t *testing.T) {
	folder := domain.Folder{ID: "f1", Name: "Longo"}
	var questions []domain.Question
	for i := 0; i < 40; i++ {
		questions = append(questions, domain.Question{
			ID:            "q",
			FolderID:      "f1",
			Title:         "Pergunta repetida para forçar quebra de página",
			Type:          domain.MultipleChoice,
			Options:       []string{"primeira opção", "segunda opção", "terceira opção"},
			CorrectAnswer: "A",
		})
	}

	var buf bytes.Buffer
	if err := ToPDF(&buf, folder, questions); err != nil {
		t.Fatalf("render: %v", err)
	}
	// Multiple pages show up as multiple page objects in the body.
	if n := bytes.Count(buf.Bytes(), []byte("/Type /Page")); n < 2 {
		t.Fatalf("expected a multi-page document, found %d page markers", n)
	}
}
