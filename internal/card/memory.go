package card

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository implements Repository with an in-process map. It exists so
// tests (and local development) can run against the exact store contract
// without a database. All operations are safe for concurrent use.
type MemoryRepository struct {
	mu    sync.Mutex
	cards map[string]Card
	now   func() time.Time
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		cards: make(map[string]Card),
		now:   time.Now,
	}
}

// Find returns cards matching params ordered by creation time and id, the
// same sort key the database repository uses.
func (r *MemoryRepository) Find(_ context.Context, params FindParams) ([]Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []Card{}
	for _, c := range r.cards {
		if !matchesFind(c, params) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	if params.Limit <= 0 {
		return matched, nil
	}
	if params.Offset >= len(matched) {
		return []Card{}, nil
	}
	end := params.Offset + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[params.Offset:end], nil
}

func matchesFind(c Card, params FindParams) bool {
	if params.Category != "" && c.Category != params.Category {
		return false
	}
	if params.Difficulty != "" && c.Difficulty != params.Difficulty {
		return false
	}
	if len(params.Categories) > 0 {
		found := false
		for _, category := range params.Categories {
			if c.Category == category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GetByID returns the card with the given id, or ErrNotFound.
func (r *MemoryRepository) GetByID(_ context.Context, id string) (Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cards[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	return c, nil
}

// Insert stores a new card and returns it with its assigned id and timestamps.
func (r *MemoryRepository) Insert(_ context.Context, input CreateCard) (Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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
	if c.Tags == nil {
		c.Tags = Tags{}
	}
	r.cards[c.ID] = c
	return c, nil
}

// UpdatePartial applies the non-nil fields of update and returns the updated
// card, or ErrNotFound.
func (r *MemoryRepository) UpdatePartial(_ context.Context, id string, update UpdateCard) (Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cards[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	if update.Question != nil {
		c.Question = *update.Question
	}
	if update.Category != nil {
		c.Category = *update.Category
	}
	if update.Difficulty != nil {
		c.Difficulty = *update.Difficulty
	}
	if update.Tags != nil {
		c.Tags = Tags(*update.Tags)
	}
	c.UpdatedAt = r.now().UTC().Truncate(time.Second)
	r.cards[id] = c
	return c, nil
}

// Delete removes the card with the given id, or returns ErrNotFound.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[id]; !ok {
		return ErrNotFound
	}
	delete(r.cards, id)
	return nil
}

// CountByCategory returns the number of cards per category.
func (r *MemoryRepository) CountByCategory(_ context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int)
	for _, c := range r.cards {
		counts[c.Category]++
	}
	return counts, nil
}

// ApplyVote increments the selected counter under the repository lock, so
// concurrent votes on the same card never lose an increment.
func (r *MemoryRepository) ApplyVote(_ context.Context, id string, vote VoteType) (Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cards[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	switch vote {
	case VoteUp:
		c.Upvotes++
	case VoteDown:
		c.Downvotes++
	default:
		return Card{}, ErrInvalidVoteType
	}
	c.TotalVotes = c.Upvotes + c.Downvotes
	c.UpdatedAt = r.now().UTC().Truncate(time.Second)
	r.cards[id] = c
	return c, nil
}
