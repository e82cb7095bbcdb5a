package card

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/burakintisah/games/internal/database"
)

//go:generate mockgen -source=repository.go -destination=../mocks/card/mock_repository.go -package=mock_card

// FindParams narrows and paginates a card listing. A zero field applies no
// filter; Limit <= 0 disables pagination entirely, which only the random
// sampling path uses to load a full candidate set.
type FindParams struct {
	Category   string
	Categories []string
	Difficulty Difficulty
	Limit      int
	Offset     int
}

// CreateCard carries the validated fields of a new card. The store assigns the
// id, timestamps, and zeroed vote counters.
type CreateCard struct {
	Question   MultilingualText
	Category   string
	Difficulty Difficulty
	Tags       []string
}

// UpdateCard carries a partial update; nil fields keep their stored values.
type UpdateCard struct {
	Question   *MultilingualText
	Category   *string
	Difficulty *Difficulty
	Tags       *[]string
}

// Repository is the contract over the card store. The core depends on this
// query surface, not on a concrete database.
type Repository interface {
	Find(ctx context.Context, params FindParams) ([]Card, error)
	GetByID(ctx context.Context, id string) (Card, error)
	Insert(ctx context.Context, input CreateCard) (Card, error)
	UpdatePartial(ctx context.Context, id string, update UpdateCard) (Card, error)
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context) (map[string]int, error)
	ApplyVote(ctx context.Context, id string, vote VoteType) (Card, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db, now: time.Now}
}

// Find returns cards matching params, ordered by creation time and id so that
// offset pagination stays reproducible across pages.
func (r *DBRepository) Find(ctx context.Context, params FindParams) ([]Card, error) {
	query := "SELECT * FROM cards"
	var conds []string
	var args []interface{}

	if params.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, params.Category)
	}
	if len(params.Categories) > 0 {
		conds = append(conds, "category IN (?)")
		args = append(args, params.Categories)
	}
	if params.Difficulty != "" {
		conds = append(conds, "difficulty = ?")
		args = append(args, string(params.Difficulty))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"
	if params.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, params.Limit, params.Offset)
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("build card query: %w", err)
	}

	cards := []Card{}
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	return cards, nil
}

// GetByID returns the card with the given id, or ErrNotFound.
func (r *DBRepository) GetByID(ctx context.Context, id string) (Card, error) {
	var c Card
	if err := r.db.GetContext(ctx, &c, "SELECT * FROM cards WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Card{}, ErrNotFound
		}
		return Card{}, fmt.Errorf("load card %s: %w", id, err)
	}
	return c, nil
}

// Insert stores a new card and returns it with its assigned id and timestamps.
func (r *DBRepository) Insert(ctx context.Context, input CreateCard) (Card, error) {
	now := r.now().UTC().Truncate(time.Second)
	c := Card{
		ID:         uuid.NewString(),
		Question:   input.Question,
		Category:   input.Category,
		Difficulty: input.Difficulty,
		Tags:       Tags(input.Tags),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO cards (id, question, category, difficulty, tags, upvotes, downvotes, total_votes, created_at, updated_at)
		 VALUES (:id, :question, :category, :difficulty, :tags, :upvotes, :downvotes, :total_votes, :created_at, :updated_at)`,
		c)
	if err != nil {
		return Card{}, fmt.Errorf("insert card: %w", err)
	}
	return c, nil
}

// UpdatePartial applies the non-nil fields of update to the card with the
// given id and returns the updated record, or ErrNotFound when the id is
// absent. The write and the read-back run in one transaction so the returned
// record is the state this update produced.
func (r *DBRepository) UpdatePartial(ctx context.Context, id string, update UpdateCard) (Card, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{r.now().UTC().Truncate(time.Second)}

	if update.Question != nil {
		sets = append(sets, "question = ?")
		args = append(args, *update.Question)
	}
	if update.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *update.Category)
	}
	if update.Difficulty != nil {
		sets = append(sets, "difficulty = ?")
		args = append(args, string(*update.Difficulty))
	}
	if update.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, Tags(*update.Tags))
	}
	args = append(args, id)

	var c Card
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE cards SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return fmt.Errorf("update card %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update card %s: %w", id, err)
		}
		if affected == 0 {
			// MySQL reports zero affected rows for a no-op update too, so
			// distinguish a missing card from an unchanged one.
			var exists int
			if err := tx.GetContext(ctx, &exists, "SELECT 1 FROM cards WHERE id = ?", id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrNotFound
				}
				return fmt.Errorf("check card %s: %w", id, err)
			}
		}
		if err := tx.GetContext(ctx, &c, "SELECT * FROM cards WHERE id = ?", id); err != nil {
			return fmt.Errorf("load card %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return Card{}, err
	}
	return c, nil
}

// Delete removes the card with the given id, or returns ErrNotFound.
func (r *DBRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByCategory returns the number of cards per category. This aggregates
// over the whole collection on every call.
func (r *DBRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT category, COUNT(*) AS count FROM cards GROUP BY category"); err != nil {
		return nil, fmt.Errorf("count cards by category: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// ApplyVote increments the selected counter and total_votes in a single
// statement, so concurrent votes on the same card never lose an increment.
func (r *DBRepository) ApplyVote(ctx context.Context, id string, vote VoteType) (Card, error) {
	var upDelta, downDelta int
	switch vote {
	case VoteUp:
		upDelta = 1
	case VoteDown:
		downDelta = 1
	default:
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidVoteType, vote)
	}

	var c Card
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE cards SET upvotes = upvotes + ?, downvotes = downvotes + ?, total_votes = total_votes + 1, updated_at = ? WHERE id = ?",
			upDelta, downDelta, r.now().UTC().Truncate(time.Second), id)
		if err != nil {
			return fmt.Errorf("apply %s to card %s: %w", vote, id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("apply %s to card %s: %w", vote, id, err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		if err := tx.GetContext(ctx, &c, "SELECT * FROM cards WHERE id = ?", id); err != nil {
			return fmt.Errorf("load card %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return Card{}, err
	}
	return c, nil
}
