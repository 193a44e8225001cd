package app

import (
	"reflect"
	"testing"
	"time"

	"studybank/internal/domain"
)

func mkFolder(id, name string) domain.Folder {
	return domain.Folder{ID: id, Name: name, UserID: "u1", CreatedAt: time.Unix(1700000000, 0)}
}

func mkQuestion(id, folderID string) domain.Question {
	return domain.Question{
		ID:            id,
		FolderID:      folderID,
		UserID:        "u1",
		Title:         "question " + id,
		Type:          domain.MultipleChoice,
		Options:       []string{"a", "b"},
		CorrectAnswer: "A",
	}
}

func TestDeleteFolderCascades(t *testing.T) {
	s := State{}
	s = Reduce(s, AddFolder{Folder: mkFolder("f1", "Direito")})
	s = Reduce(s, AddFolder{Folder: mkFolder("f2", "Matemática")})
	s = Reduce(s, AddQuestion{Question: mkQuestion("q1", "f1")})
	s = Reduce(s, AddQuestion{Question: mkQuestion("q2", "f1")})
	s = Reduce(s, AddQuestion{Question: mkQuestion("q3", "f2")})

	s = Reduce(s, DeleteFolder{ID: "f1"})

	if len(s.Folders) != 1 || s.Folders[0].ID != "f2" {
		t.Fatalf("expected only f2 to remain, got %+v", s.Folders)
	}
	if len(s.Questions) != 1 || s.Questions[0].ID != "q3" {
		t.Fatalf("expected only q3 to remain, got %+v", s.Questions)
	}
}

func TestReplaceFoldersIdempotent(t *testing.T) {
	folders := []domain.Folder{mkFolder("f1", "Direito"), mkFolder("f2", "Matemática")}

	once := Reduce(State{}, ReplaceFolders{Folders: folders})
	twice := Reduce(once, ReplaceFolders{Folders: folders})

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("replace not idempotent: %+v vs %+v", once, twice)
	}
}

func TestUpdateMissingIsNoOp(t *testing.T) {
	s := Reduce(State{}, AddFolder{Folder: mkFolder("f1", "Direito")})

	updated := Reduce(s, UpdateFolder{Folder: mkFolder("f-missing", "Ghost")})
	if !reflect.DeepEqual(s.Folders, updated.Folders) {
		t.Fatalf("update of missing folder changed state: %+v", updated.Folders)
	}

	q := Reduce(s, UpdateQuestion{Question: mkQuestion("q-missing", "f1")})
	if len(q.Questions) != 0 {
		t.Fatalf("update of missing question changed state: %+v", q.Questions)
	}
}

func TestUpdateReplacesMatchingRecord(t *testing.T) {
	s := State{}
	s = Reduce(s, AddFolder{Folder: mkFolder("f1", "Direito")})
	s = Reduce(s, AddFolder{Folder: mkFolder("f2", "Matemática")})

	renamed := mkFolder("f1", "Direito Constitucional")
	s = Reduce(s, UpdateFolder{Folder: renamed})

	if s.Folders[0].Name != "Direito Constitucional" {
		t.Fatalf("expected f1 renamed, got %+v", s.Folders[0])
	}
	if s.Folders[1].Name != "Matemática" {
		t.Fatalf("expected f2 untouched, got %+v", s.Folders[1])
	}
}

func TestResetAllReturnsEmptyState(t *testing.T) {
	s := State{}
	s = Reduce(s, AddFolder{Folder: mkFolder("f1", "Direito")})
	s = Reduce(s, AddQuestion{Question: mkQuestion("q1", "f1")})

	s = Reduce(s, ResetAll{})

	if len(s.Folders) != 0 || len(s.Questions) != 0 || s.Timer != nil {
		t.Fatalf("expected empty state, got %+v", s)
	}
}

func TestReduceNeverMutatesPrevious(t *testing.T) {
	base := State{}
	base = Reduce(base, AddFolder{Folder: mkFolder("f1", "Direito")})
	base = Reduce(base, AddQuestion{Question: mkQuestion("q1", "f1")})
	snapshot := State{
		Folders:   append([]domain.Folder(nil), base.Folders...),
		Questions: append([]domain.Question(nil), base.Questions...),
	}

	_ = Reduce(base, AddFolder{Folder: mkFolder("f2", "Matemática")})
	_ = Reduce(base, UpdateFolder{Folder: mkFolder("f1", "Renamed")})
	_ = Reduce(base, DeleteFolder{ID: "f1"})
	_ = Reduce(base, DeleteQuestion{ID: "q1"})

	if !reflect.DeepEqual(base.Folders, snapshot.Folders) || !reflect.DeepEqual(base.Questions, snapshot.Questions) {
		t.Fatalf("previous state mutated: %+v", base)
	}
}
