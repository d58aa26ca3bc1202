package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/catalog"
)

// Catalog stores quiz documents as JSONB rows in Postgres. It serves
// both the admin CRUD API and (as a QuizLoader) the cache layers.
type Catalog struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool, now: time.Now}
}

func (c *Catalog) List(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := c.pool.Query(ctx, `SELECT data FROM quizzes ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (c *Catalog) Get(ctx context.Context, id string) (domain.Quiz, error) {
	var raw []byte
	err := c.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func (c *Catalog) Create(ctx context.Context, in catalog.QuizInput) (domain.Quiz, error) {
	if err := in.Validate(); err != nil {
		return domain.Quiz{}, err
	}

	quiz := catalog.FromInput(in, c.now())
	data, err := json.Marshal(quiz)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
	}
	if _, err := c.pool.Exec(ctx, `INSERT INTO quizzes (id, data) VALUES ($1, $2)`, quiz.ID, data); err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return quiz, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// LoadQuiz implements the cache layers' QuizLoader.
func (c *Catalog) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return c.Get(ctx, quizID)
}
