// Package card holds the conversation card domain: the card model, the
// repository contract over the card store, language formatting, and random
// sampling.
package card

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Pagination and field limits shared by the public and admin surfaces.
const (
	DefaultLimit  = 50
	MaxLimit      = 100
	MaxAdminLimit = 500

	MaxQuestionLength = 1000
	MaxCategoryLength = 50
	MaxTagLength      = 50
	MaxTagsCount      = 10

	MaxRandomCount      = 10
	MaxRandomCategories = 10
)

// Difficulty is the closed difficulty vocabulary of a card.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty returns the difficulty for s, or an error when s is not one
// of the three valid values.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

// Language is a supported display language code.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageTurkish Language = "tr"
)

// NormalizeLanguage maps a raw language parameter to a supported language.
// Anything other than "tr" resolves to English.
func NormalizeLanguage(s string) Language {
	if Language(s) == LanguageTurkish {
		return LanguageTurkish
	}
	return LanguageEnglish
}

// VoteType identifies which counter a vote increments.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

// ParseVoteType canonicalizes a raw vote type. Both historical spellings of
// each direction ("up"/"upvote", "down"/"downvote") are accepted.
func ParseVoteType(s string) (VoteType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upvote":
		return VoteUp, nil
	case "down", "downvote":
		return VoteDown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVoteType, s)
}

// MultilingualText is a question in every supported language. Both entries are
// mandatory once a card is created.
type MultilingualText struct {
	En string `json:"en"`
	Tr string `json:"tr"`
}

// Value marshals the text for storage in a JSON column.
func (t MultilingualText) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan unmarshals the text from a JSON column.
func (t *MultilingualText) Scan(src any) error {
	return scanJSON(src, t)
}

// Tags is an ordered list of short labels attached to a card, stored as a JSON
// column.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(t)
}

func (t *Tags) Scan(src any) error {
	return scanJSON(src, t)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	}
	return fmt.Errorf("unsupported column type %T for JSON value", src)
}

// Card is a single question unit with multilingual text, a soft category
// grouping, a difficulty, optional tags, and vote counters.
//
// Invariant: TotalVotes == Upvotes + Downvotes after every committed write.
type Card struct {
	ID         string           `db:"id" json:"id"`
	Question   MultilingualText `db:"question" json:"question"`
	Category   string           `db:"category" json:"category"`
	Difficulty Difficulty       `db:"difficulty" json:"difficulty"`
	Tags       Tags             `db:"tags" json:"tags"`
	Upvotes    int              `db:"upvotes" json:"upvotes"`
	Downvotes  int              `db:"downvotes" json:"downvotes"`
	TotalVotes int              `db:"total_votes" json:"totalVotes"`
	CreatedAt  time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updatedAt"`
}

// VoteStats are the derived vote statistics of a card. Percentages are integer
// rounded and always sum to 100, except when there are no votes at all, in
// which case both are 0.
type VoteStats struct {
	CardID             string `json:"cardId"`
	Upvotes            int    `json:"upvotes"`
	Downvotes          int    `json:"downvotes"`
	TotalVotes         int    `json:"totalVotes"`
	UpvotePercentage   int    `json:"upvotePercentage"`
	DownvotePercentage int    `json:"downvotePercentage"`
}

// Stats derives the vote statistics for c. The downvote percentage is computed
// as the complement of the rounded upvote percentage so the two always sum to
// 100.
func (c Card) Stats() VoteStats {
	stats := VoteStats{
		CardID:     c.ID,
		Upvotes:    c.Upvotes,
		Downvotes:  c.Downvotes,
		TotalVotes: c.Upvotes + c.Downvotes,
	}
	if stats.TotalVotes > 0 {
		stats.UpvotePercentage = int(float64(stats.Upvotes)/float64(stats.TotalVotes)*100 + 0.5)
		stats.DownvotePercentage = 100 - stats.UpvotePercentage
	}
	return stats
}

// NormalizeCategory converts a raw category value to its stored form.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
