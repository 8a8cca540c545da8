package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-session-service/internal/domain"
)

const quizColumns = `id, title, topic, created_at, content`

// QuizStore keeps quizzes in Postgres with the parsed content as JSONB.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return out, nil
}

func (s *QuizStore) GetQuiz(ctx context.Context, id int64) (domain.Quiz, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *QuizStore) CreateQuiz(ctx context.Context, in domain.NewQuiz) (domain.Quiz, error) {
	content, err := json.Marshal(in.Content)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal quiz content: %w", err)
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO quizzes (title, topic, content) VALUES ($1, $2, $3::jsonb) RETURNING `+quizColumns,
		in.Title, in.Topic, string(content))
	return scanQuiz(row)
}

// UpdateQuiz applies the patch inside a transaction holding the row lock.
func (s *QuizStore) UpdateQuiz(ctx context.Context, id int64, patch domain.QuizPatch) (domain.Quiz, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanQuiz(tx.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return domain.Quiz{}, err
	}
	next := patch.Apply(current)
	content, err := json.Marshal(next.Content)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal quiz content: %w", err)
	}

	updated, err := scanQuiz(tx.QueryRow(ctx,
		`UPDATE quizzes SET title=$2, topic=$3, content=$4::jsonb WHERE id=$1 RETURNING `+quizColumns,
		id, next.Title, next.Topic, string(content)))
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

func (s *QuizStore) DeleteQuiz(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var (
		quiz domain.Quiz
		raw  []byte
	)
	if err := row.Scan(&quiz.ID, &quiz.Title, &quiz.Topic, &quiz.CreatedAt, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	if err := json.Unmarshal(raw, &quiz.Content); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
