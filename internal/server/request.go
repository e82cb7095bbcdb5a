package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/burakintisah/games/internal/card"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 100 << 10

type questionRequest struct {
	En string `json:"en" validate:"required,max=1000"`
	Tr string `json:"tr" validate:"required,max=1000"`
}

type createCardRequest struct {
	Question   *questionRequest `json:"question" validate:"required"`
	Category   string           `json:"category" validate:"required,max=50"`
	Difficulty string           `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Tags       []string         `json:"tags" validate:"max=10,dive,required,max=50"`
}

// normalize trims free-text fields and lowercases the category before
// validation, so length checks apply to what would actually be stored.
func (req *createCardRequest) normalize() {
	if req.Question != nil {
		req.Question.En = strings.TrimSpace(req.Question.En)
		req.Question.Tr = strings.TrimSpace(req.Question.Tr)
	}
	req.Category = card.NormalizeCategory(req.Category)
	for i, tag := range req.Tags {
		req.Tags[i] = strings.TrimSpace(tag)
	}
}

func (req createCardRequest) toCreateCard() card.CreateCard {
	return card.CreateCard{
		Question: card.MultilingualText{
			En: req.Question.En,
			Tr: req.Question.Tr,
		},
		Category:   req.Category,
		Difficulty: card.Difficulty(req.Difficulty),
		Tags:       req.Tags,
	}
}

type updateCardRequest struct {
	Question   *questionRequest `json:"question"`
	Category   *string          `json:"category" validate:"omitempty,max=50"`
	Difficulty *string          `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Tags       *[]string        `json:"tags" validate:"omitempty,max=10,dive,required,max=50"`
}

func (req *updateCardRequest) normalize() {
	if req.Question != nil {
		req.Question.En = strings.TrimSpace(req.Question.En)
		req.Question.Tr = strings.TrimSpace(req.Question.Tr)
	}
	if req.Category != nil {
		normalized := card.NormalizeCategory(*req.Category)
		req.Category = &normalized
	}
	if req.Tags != nil {
		for i, tag := range *req.Tags {
			(*req.Tags)[i] = strings.TrimSpace(tag)
		}
	}
}

func (req updateCardRequest) toUpdateCard() card.UpdateCard {
	update := card.UpdateCard{
		Category: req.Category,
		Tags:     req.Tags,
	}
	if req.Question != nil {
		update.Question = &card.MultilingualText{
			En: req.Question.En,
			Tr: req.Question.Tr,
		}
	}
	if req.Difficulty != nil {
		difficulty := card.Difficulty(*req.Difficulty)
		update.Difficulty = &difficulty
	}
	return update
}

type voteRequest struct {
	VoteType string `json:"voteType"`
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// validationMessage flattens a validator error into one translated,
// client-facing message.
func (s *Server) validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request body"
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, e.Translate(s.translator))
	}
	return strings.Join(messages, ", ")
}

// clampPagination parses limit/offset query values and clamps them to safe
// bounds: a missing, unparseable, or non-positive limit falls back to the
// default before capping at maxLimit, and offset never goes negative.
func clampPagination(limitStr, offsetStr string, maxLimit int) (limit, offset int) {
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = card.DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, err = strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// clampCount parses the random sample size and clamps it to [1, MaxRandomCount].
func clampCount(countStr string) int {
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 1 {
		return 1
	}
	if count > card.MaxRandomCount {
		return card.MaxRandomCount
	}
	return count
}

// parseCategories collects category filters from repeated query parameters
// and comma-separated values, normalized to the stored form and capped at
// MaxRandomCategories distinct entries.
func parseCategories(values []string) []string {
	var categories []string
	seen := make(map[string]bool)
	for _, value := range values {
		for _, raw := range strings.Split(value, ",") {
			category := card.NormalizeCategory(raw)
			if category == "" || seen[category] {
				continue
			}
			seen[category] = true
			categories = append(categories, category)
			if len(categories) == card.MaxRandomCategories {
				return categories
			}
		}
	}
	return categories
}
