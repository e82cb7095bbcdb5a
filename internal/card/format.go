package card

import "time"

// questionPlaceholder is returned when a card carries no text in the requested
// language or in English. Creation validation makes this unreachable for cards
// written through the API, but stored data is not trusted to be well formed.
const questionPlaceholder = "Question not available"

// FormattedCard is a card with its question resolved to a single display
// string for one language. It is the public read shape; the stored
// multilingual record stays untouched.
type FormattedCard struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Tags       Tags       `json:"tags"`
	Upvotes    int        `json:"upvotes"`
	Downvotes  int        `json:"downvotes"`
	TotalVotes int        `json:"totalVotes"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
	Language   Language   `json:"language"`
}

// FormatForLanguage resolves c's question for the requested language.
// Resolution order: requested language, English, placeholder.
func FormatForLanguage(c Card, lang Language) FormattedCard {
	question := c.Question.En
	if lang == LanguageTurkish && c.Question.Tr != "" {
		question = c.Question.Tr
	}
	if question == "" {
		question = questionPlaceholder
	}

	return FormattedCard{
		ID:         c.ID,
		Question:   question,
		Category:   c.Category,
		Difficulty: c.Difficulty,
		Tags:       c.Tags,
		Upvotes:    c.Upvotes,
		Downvotes:  c.Downvotes,
		TotalVotes: c.TotalVotes,
		CreatedAt:  formatTime(c.CreatedAt),
		UpdatedAt:  formatTime(c.UpdatedAt),
		Language:   lang,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatAllForLanguage resolves every card in cards for the requested
// language, preserving order.
func FormatAllForLanguage(cards []Card, lang Language) []FormattedCard {
	formatted := make([]FormattedCard, 0, len(cards))
	for _, c := range cards {
		formatted = append(formatted, FormatForLanguage(c, lang))
	}
	return formatted
}
