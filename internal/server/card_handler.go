package server

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/burakintisah/games/internal/card"
)

type listFilters struct {
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Language   string `json:"language"`
}

type paginationEcho struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type listPayload struct {
	Cards      interface{}    `json:"cards"`
	Total      int            `json:"total"`
	Filters    listFilters    `json:"filters"`
	Pagination paginationEcho `json:"pagination"`
}

// handleListCards serves the public filtered, paginated listing with
// language-resolved questions.
func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lang := card.NormalizeLanguage(query.Get("language"))
	limit, offset := clampPagination(query.Get("limit"), query.Get("offset"), card.MaxLimit)

	params := card.FindParams{
		Category: query.Get("category"),
		Limit:    limit,
		Offset:   offset,
	}
	// An unknown difficulty value is ignored as a filter; only the write
	// boundary rejects bad difficulties.
	if difficulty, err := card.ParseDifficulty(query.Get("difficulty")); err == nil {
		params.Difficulty = difficulty
	}

	cards, err := s.repo.Find(r.Context(), params)
	if err != nil {
		s.storeError(w, err, "")
		return
	}

	formatted := card.FormatAllForLanguage(cards, lang)
	writeSuccess(w, http.StatusOK, "Conversation cards retrieved successfully", listPayload{
		Cards: formatted,
		Total: len(formatted),
		Filters: listFilters{
			Category:   query.Get("category"),
			Difficulty: query.Get("difficulty"),
			Language:   string(lang),
		},
		Pagination: paginationEcho{Limit: limit, Offset: offset},
	})
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type categoryCountsPayload struct {
	TotalCards       int             `json:"totalCards"`
	CategoryCounts   []categoryCount `json:"categoryCounts"`
	UniqueCategories int             `json:"uniqueCategories"`
}

// handleCategoryCounts serves per-category totals, largest categories first.
func (s *Server) handleCategoryCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.repo.CountByCategory(r.Context())
	if err != nil {
		s.storeError(w, err, "")
		return
	}

	sorted := make([]categoryCount, 0, len(counts))
	total := 0
	for category, count := range counts {
		sorted = append(sorted, categoryCount{Category: category, Count: count})
		total += count
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Category < sorted[j].Category
	})

	writeSuccess(w, http.StatusOK, "Category counts retrieved successfully", categoryCountsPayload{
		TotalCards:       total,
		CategoryCounts:   sorted,
		UniqueCategories: len(sorted),
	})
}

type randomPayload struct {
	Cards               []card.FormattedCard `json:"cards"`
	RequestedCount      int                  `json:"requestedCount"`
	ReturnedCount       int                  `json:"returnedCount"`
	AppliedFilters      []string             `json:"appliedFilters"`
	TotalAvailableCards int                  `json:"totalAvailableCards"`
	Language            string               `json:"language"`
}

type randomEmptyPayload struct {
	AppliedFilters []string `json:"appliedFilters"`
	AvailableCards int      `json:"availableCards"`
	Language       string   `json:"language"`
}

// handleRandomCards serves an unbiased sample from the filtered candidate
// set. An empty candidate set is a not-found condition, not an empty success:
// the caller asked for cards and there are none to give.
func (s *Server) handleRandomCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lang := card.NormalizeLanguage(query.Get("language"))
	count := clampCount(query.Get("count"))
	categories := parseCategories(query["categories"])
	appliedFilters := categories
	if appliedFilters == nil {
		appliedFilters = []string{}
	}

	candidates, err := s.repo.Find(r.Context(), card.FindParams{Categories: categories})
	if err != nil {
		s.storeError(w, err, "")
		return
	}

	if len(candidates) == 0 {
		writeErrorData(w, http.StatusNotFound, "No conversation cards found matching the criteria", randomEmptyPayload{
			AppliedFilters: appliedFilters,
			AvailableCards: 0,
			Language:       string(lang),
		})
		return
	}

	selected := s.sample(candidates, count)

	message := "Random conversation card retrieved successfully"
	if count > 1 {
		message = "Random conversation cards retrieved successfully"
	}
	writeSuccess(w, http.StatusOK, message, randomPayload{
		Cards:               card.FormatAllForLanguage(selected, lang),
		RequestedCount:      count,
		ReturnedCount:       len(selected),
		AppliedFilters:      appliedFilters,
		TotalAvailableCards: len(candidates),
		Language:            string(lang),
	})
}

// handleGetCard serves a single language-resolved card.
func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	lang := card.NormalizeLanguage(r.URL.Query().Get("language"))

	found, err := s.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, err, "Conversation card not found")
		return
	}

	writeSuccess(w, http.StatusOK, "Conversation card retrieved successfully", card.FormatForLanguage(found, lang))
}

// handleCreateCard validates and stores a new card. Validation failures are
// reported before any store call; an invalid tag rejects the whole request
// rather than being dropped silently.
func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, s.validationMessage(err))
		return
	}

	created, err := s.repo.Insert(r.Context(), req.toCreateCard())
	if err != nil {
		s.storeError(w, err, "")
		return
	}

	writeSuccess(w, http.StatusCreated, "Conversation card created successfully", created)
}

// handleUpdateCard applies a partial update; omitted fields keep their stored
// values.
func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var req updateCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.normalize()
	if req.Category != nil && *req.Category == "" {
		writeError(w, http.StatusBadRequest, "category must not be empty")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, s.validationMessage(err))
		return
	}

	updated, err := s.repo.UpdatePartial(r.Context(), r.PathValue("id"), req.toUpdateCard())
	if err != nil {
		s.storeError(w, err, "Conversation card not found")
		return
	}

	writeSuccess(w, http.StatusOK, "Conversation card updated successfully", updated)
}

type deletePayload struct {
	DeletedCardID string `json:"deletedCardId"`
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.storeError(w, err, "Conversation card not found")
		return
	}

	writeSuccess(w, http.StatusOK, "Conversation card deleted successfully", deletePayload{DeletedCardID: id})
}

type votePayload struct {
	ID         string `json:"id"`
	VoteType   string `json:"voteType"`
	Upvotes    int    `json:"upvotes"`
	Downvotes  int    `json:"downvotes"`
	TotalVotes int    `json:"totalVotes"`
}

// handleVote increments one vote counter atomically and returns the new
// counts.
func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	voteType, err := card.ParseVoteType(req.VoteType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vote type. Must be: upvote or downvote")
		return
	}

	updated, err := s.repo.ApplyVote(r.Context(), r.PathValue("id"), voteType)
	if err != nil {
		s.storeError(w, err, "Conversation card not found")
		return
	}

	writeSuccess(w, http.StatusOK, "Card "+string(voteType)+"d successfully", votePayload{
		ID:         updated.ID,
		VoteType:   string(voteType),
		Upvotes:    updated.Upvotes,
		Downvotes:  updated.Downvotes,
		TotalVotes: updated.TotalVotes,
	})
}

func (s *Server) handleVoteStats(w http.ResponseWriter, r *http.Request) {
	found, err := s.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, err, "Conversation card not found")
		return
	}

	writeSuccess(w, http.StatusOK, "Vote statistics retrieved successfully", found.Stats())
}

// handleAdminListCards serves the raw multilingual records for the admin
// panel, behind the bearer token gate and with the higher pagination cap.
func (s *Server) handleAdminListCards(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	query := r.URL.Query()
	limit, offset := clampPagination(query.Get("limit"), query.Get("offset"), card.MaxAdminLimit)

	params := card.FindParams{
		Category: query.Get("category"),
		Limit:    limit,
		Offset:   offset,
	}
	if difficulty, err := card.ParseDifficulty(query.Get("difficulty")); err == nil {
		params.Difficulty = difficulty
	}

	cards, err := s.repo.Find(r.Context(), params)
	if err != nil {
		s.storeError(w, err, "")
		return
	}

	writeSuccess(w, http.StatusOK, "Admin conversation cards retrieved successfully", listPayload{
		Cards: cards,
		Total: len(cards),
		Filters: listFilters{
			Category:   query.Get("category"),
			Difficulty: query.Get("difficulty"),
			Language:   "raw",
		},
		Pagination: paginationEcho{Limit: limit, Offset: offset},
	})
}

// requireAdmin enforces the bearer token gate: a missing or malformed header
// is unauthenticated, a wrong token is forbidden. An unset server token
// rejects everything.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return false
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if s.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
		writeError(w, http.StatusForbidden, "Forbidden: invalid credentials")
		return false
	}
	return true
}

// storeError maps a repository failure to the error envelope. Raw store error
// text is logged and never echoed to the client.
func (s *Server) storeError(w http.ResponseWriter, err error, notFoundMessage string) {
	if errors.Is(err, card.ErrNotFound) && notFoundMessage != "" {
		writeError(w, http.StatusNotFound, notFoundMessage)
		return
	}
	slog.Error("card store failure", "error", err)
	writeError(w, http.StatusServiceUnavailable, "Card store unavailable")
}
