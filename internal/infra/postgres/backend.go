// Package postgres implements the remote relational persistence deployment.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"studybank/internal/domain"
)

// Backend stores folders and questions in two tables; multiple-choice
// options travel as JSONB. The schema keeps a plain foreign key from
// questions to folders, so dependent questions must be deleted before their
// folder (the store controller orders the calls that way).
type Backend struct {
	pool *pgxpool.Pool
}

func NewBackend(pool *pgxpool.Pool) *Backend {
	return &Backend{pool: pool}
}

const folderColumns = `id, user_id, name, description, created_at`

func (b *Backend) ListFoldersByUser(ctx context.Context, userID string) ([]domain.Folder, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		var f domain.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Description, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (b *Backend) CreateFolder(ctx context.Context, userID string, draft domain.FolderDraft) (domain.Folder, error) {
	var f domain.Folder
	err := b.pool.QueryRow(ctx,
		`INSERT INTO folders (user_id, name, description) VALUES ($1, $2, $3)
		 RETURNING `+folderColumns, userID, draft.Name, draft.Description).
		Scan(&f.ID, &f.UserID, &f.Name, &f.Description, &f.CreatedAt)
	if err != nil {
		return domain.Folder{}, fmt.Errorf("create folder: %w", err)
	}
	return f, nil
}

func (b *Backend) UpdateFolder(ctx context.Context, userID, id string, draft domain.FolderDraft) (domain.Folder, error) {
	var f domain.Folder
	err := b.pool.QueryRow(ctx,
		`UPDATE folders SET name=$1, description=$2 WHERE id=$3 AND user_id=$4
		 RETURNING `+folderColumns, draft.Name, draft.Description, id, userID).
		Scan(&f.ID, &f.UserID, &f.Name, &f.Description, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Folder{}, domain.ErrFolderNotFound
	}
	if err != nil {
		return domain.Folder{}, fmt.Errorf("update folder: %w", err)
	}
	return f, nil
}

func (b *Backend) DeleteFolder(ctx context.Context, userID, id string) error {
	tag, err := b.pool.Exec(ctx, `DELETE FROM folders WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFolderNotFound
	}
	return nil
}

const questionColumns = `id, folder_id, user_id, title, question_type, options, correct_answer, correct_boolean, explanation, created_at, updated_at`

func (b *Backend) ListQuestionsByUser(ctx context.Context, userID string) ([]domain.Question, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (b *Backend) CreateQuestion(ctx context.Context, userID string, draft domain.QuestionDraft) (domain.Question, error) {
	options, err := encodeOptions(draft.Options)
	if err != nil {
		return domain.Question{}, err
	}
	row := b.pool.QueryRow(ctx,
		`INSERT INTO questions (folder_id, user_id, title, question_type, options, correct_answer, correct_boolean, explanation)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+questionColumns,
		draft.FolderID, userID, draft.Title, string(draft.Type), options, draft.CorrectAnswer, draft.CorrectBoolean, draft.Explanation)
	q, err := scanQuestion(row)
	if err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

func (b *Backend) UpdateQuestion(ctx context.Context, userID, id string, draft domain.QuestionDraft) (domain.Question, error) {
	options, err := encodeOptions(draft.Options)
	if err != nil {
		return domain.Question{}, err
	}
	row := b.pool.QueryRow(ctx,
		`UPDATE questions
		 SET folder_id=$1, title=$2, question_type=$3, options=$4, correct_answer=$5, correct_boolean=$6, explanation=$7, updated_at=now()
		 WHERE id=$8 AND user_id=$9
		 RETURNING `+questionColumns,
		draft.FolderID, draft.Title, string(draft.Type), options, draft.CorrectAnswer, draft.CorrectBoolean, draft.Explanation, id, userID)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

func (b *Backend) DeleteQuestion(ctx context.Context, userID, id string) error {
	tag, err := b.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (b *Backend) DeleteQuestionsByFolder(ctx context.Context, userID, folderID string) error {
	_, err := b.pool.Exec(ctx, `DELETE FROM questions WHERE folder_id=$1 AND user_id=$2`, folderID, userID)
	if err != nil {
		return fmt.Errorf("delete folder questions: %w", err)
	}
	return nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q       domain.Question
		qtype   string
		options []byte
	)
	err := row.Scan(&q.ID, &q.FolderID, &q.UserID, &q.Title, &qtype, &options,
		&q.CorrectAnswer, &q.CorrectBoolean, &q.Explanation, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return domain.Question{}, err
	}
	q.Type = domain.QuestionType(qtype)
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return domain.Question{}, fmt.Errorf("decode options: %w", err)
		}
	}
	return q, nil
}

// encodeOptions maps an absent option list to SQL NULL rather than an empty
// JSON array, so boolean questions keep a NULL options column.
func encodeOptions(options []string) ([]byte, error) {
	if len(options) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	return raw, nil
}
