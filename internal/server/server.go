// Package server exposes the card retrieval and sampling service over HTTP.
package server

import (
	"fmt"
	"math/rand"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/burakintisah/games/internal/card"
)

// Server holds the dependencies for the HTTP API: the card store, the admin
// token, and the randomness source for sampling.
type Server struct {
	repo       card.Repository
	adminToken string
	validator  *validator.Validate
	translator ut.Translator
	handler    http.Handler

	// rand.Rand is not safe for concurrent use; rngMu serializes draws.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a Server around the given card repository. adminToken guards
// the admin listing endpoint; when empty, every admin request is rejected.
func New(repo card.Repository, adminToken string) (*Server, error) {
	validate, trans, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("create request validator: %w", err)
	}

	s := &Server{
		repo:       repo,
		adminToken: adminToken,
		validator:  validate,
		translator: trans,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.handler = withLogging(withRecovery(s.routes()))
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /v1/cards", s.handleListCards)
	mux.HandleFunc("POST /v1/cards", s.handleCreateCard)
	mux.HandleFunc("GET /v1/cards/categories/count", s.handleCategoryCounts)
	mux.HandleFunc("GET /v1/cards/random", s.handleRandomCards)
	mux.HandleFunc("GET /v1/cards/admin", s.handleAdminListCards)
	mux.HandleFunc("GET /v1/cards/{id}", s.handleGetCard)
	mux.HandleFunc("PUT /v1/cards/{id}", s.handleUpdateCard)
	mux.HandleFunc("DELETE /v1/cards/{id}", s.handleDeleteCard)
	mux.HandleFunc("POST /v1/cards/{id}/vote", s.handleVote)
	mux.HandleFunc("GET /v1/cards/{id}/votes", s.handleVoteStats)

	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Endpoint not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "API is healthy", nil)
}

// sample draws count cards without replacement under the rng lock.
func (s *Server) sample(cards []card.Card, count int) []card.Card {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return card.Sample(s.rng, cards, count)
}

func newRequestValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	// Report field names as they appear on the wire.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate, trans, nil
}
