package card

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCards(t *testing.T, repo *MemoryRepository, inputs []CreateCard) []Card {
	t.Helper()

	seeded := make([]Card, 0, len(inputs))
	for _, input := range inputs {
		c, err := repo.Insert(context.Background(), input)
		require.NoError(t, err)
		seeded = append(seeded, c)
	}
	return seeded
}

func TestMemoryRepository_InsertAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	repo.now = func() time.Time { return testTime }

	created, err := repo.Insert(context.Background(), CreateCard{
		Question:   MultilingualText{En: "What drives you?", Tr: "Seni ne motive eder?"},
		Category:   "work",
		Difficulty: DifficultyMedium,
		Tags:       []string{"motivation"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, testTime, created.CreatedAt)
	assert.Equal(t, testTime, created.UpdatedAt)
	assert.Equal(t, 0, created.TotalVotes)

	got, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_Find(t *testing.T) {
	repo := NewMemoryRepository()
	base := testTime
	clock := base
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	inputs := make([]CreateCard, 0, 50)
	for i := 0; i < 50; i++ {
		category := "work"
		difficulty := DifficultyEasy
		if i < 17 {
			category = "philosophy"
			difficulty = DifficultyHard
		}
		inputs = append(inputs, CreateCard{
			Question:   MultilingualText{En: fmt.Sprintf("Question %d", i)},
			Category:   category,
			Difficulty: difficulty,
		})
	}
	seedCards(t, repo, inputs)

	tests := []struct {
		name    string
		params  FindParams
		wantLen int
	}{
		{
			name:    "no filters, no limit",
			params:  FindParams{},
			wantLen: 50,
		},
		{
			name:    "category filter",
			params:  FindParams{Category: "philosophy"},
			wantLen: 17,
		},
		{
			name:    "category and difficulty filter",
			params:  FindParams{Category: "philosophy", Difficulty: DifficultyHard},
			wantLen: 17,
		},
		{
			name:    "difficulty excludes the other category",
			params:  FindParams{Category: "work", Difficulty: DifficultyHard},
			wantLen: 0,
		},
		{
			name:    "category inclusion set",
			params:  FindParams{Categories: []string{"philosophy", "unknown"}},
			wantLen: 17,
		},
		{
			name:    "limit and offset",
			params:  FindParams{Limit: 20, Offset: 40},
			wantLen: 10,
		},
		{
			name:    "offset beyond the collection",
			params:  FindParams{Limit: 20, Offset: 100},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Find(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}

	t.Run("ordering is stable across pages", func(t *testing.T) {
		all, err := repo.Find(context.Background(), FindParams{})
		require.NoError(t, err)

		var paged []Card
		for offset := 0; offset < 50; offset += 10 {
			page, err := repo.Find(context.Background(), FindParams{Limit: 10, Offset: offset})
			require.NoError(t, err)
			paged = append(paged, page...)
		}
		assert.Equal(t, all, paged)
	})
}

func TestMemoryRepository_UpdatePartial(t *testing.T) {
	repo := NewMemoryRepository()
	seeded := seedCards(t, repo, []CreateCard{{
		Question:   MultilingualText{En: "Original"},
		Category:   "work",
		Difficulty: DifficultyEasy,
		Tags:       []string{"old"},
	}})

	category := "philosophy"
	difficulty := DifficultyHard
	got, err := repo.UpdatePartial(context.Background(), seeded[0].ID, UpdateCard{
		Category:   &category,
		Difficulty: &difficulty,
	})
	require.NoError(t, err)

	assert.Equal(t, "philosophy", got.Category)
	assert.Equal(t, DifficultyHard, got.Difficulty)
	assert.Equal(t, MultilingualText{En: "Original"}, got.Question, "omitted fields keep their values")
	assert.Equal(t, Tags{"old"}, got.Tags)

	_, err = repo.UpdatePartial(context.Background(), "missing", UpdateCard{Category: &category})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	seeded := seedCards(t, repo, []CreateCard{{
		Question: MultilingualText{En: "Q"},
		Category: "work",
	}})

	require.NoError(t, repo.Delete(context.Background(), seeded[0].ID))

	_, err := repo.GetByID(context.Background(), seeded[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), seeded[0].ID), ErrNotFound)
}

func TestMemoryRepository_CountByCategory(t *testing.T) {
	repo := NewMemoryRepository()
	seedCards(t, repo, []CreateCard{
		{Question: MultilingualText{En: "Q1"}, Category: "work"},
		{Question: MultilingualText{En: "Q2"}, Category: "work"},
		{Question: MultilingualText{En: "Q3"}, Category: "philosophy"},
	})

	counts, err := repo.CountByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"work": 2, "philosophy": 1}, counts)
}

func TestMemoryRepository_ApplyVote(t *testing.T) {
	repo := NewMemoryRepository()
	seeded := seedCards(t, repo, []CreateCard{{
		Question: MultilingualText{En: "Q"},
		Category: "work",
	}})

	got, err := repo.ApplyVote(context.Background(), seeded[0].ID, VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Upvotes)
	assert.Equal(t, 0, got.Downvotes)
	assert.Equal(t, 1, got.TotalVotes)

	got, err = repo.ApplyVote(context.Background(), seeded[0].ID, VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Upvotes)
	assert.Equal(t, 1, got.Downvotes)
	assert.Equal(t, 2, got.TotalVotes)

	_, err = repo.ApplyVote(context.Background(), "missing", VoteUp)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.ApplyVote(context.Background(), seeded[0].ID, VoteType("sideways"))
	assert.ErrorIs(t, err, ErrInvalidVoteType)
}

func TestMemoryRepository_ApplyVote_Concurrent(t *testing.T) {
	repo := NewMemoryRepository()
	seeded := seedCards(t, repo, []CreateCard{{
		Question: MultilingualText{En: "Q"},
		Category: "work",
	}})

	const voters = 100
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		vote := VoteUp
		if i%2 == 1 {
			vote = VoteDown
		}
		go func(vote VoteType) {
			defer wg.Done()
			_, err := repo.ApplyVote(context.Background(), seeded[0].ID, vote)
			assert.NoError(t, err)
		}(vote)
	}
	wg.Wait()

	got, err := repo.GetByID(context.Background(), seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, voters/2, got.Upvotes)
	assert.Equal(t, voters/2, got.Downvotes)
	assert.Equal(t, voters, got.TotalVotes, "no increment may be lost under concurrency")
}
