package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"IdleTycoon/internal/economy"
	"IdleTycoon/internal/game"
	"IdleTycoon/internal/model"
)

// Server exposes the game's user actions and state over HTTP.
type Server struct {
	game *game.Game
	feed http.HandlerFunc
}

// New builds a Server. feed serves the websocket presentation feed and may be nil.
func New(g *game.Game, feed http.HandlerFunc) *Server {
	return &Server{game: g, feed: feed}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/click", s.handleClick)
		r.Post("/assets/{id}/purchase", s.handlePurchase)
		r.Post("/bonus/{id}/claim", s.handleClaim)
		r.Post("/multiplier", s.handleMultiplier)
		r.Post("/ad", s.handleAd)
	})
	if s.feed != nil {
		r.Get("/ws", s.feed)
	}
	return r
}

type purchaseResponse struct {
	Purchased bool             `json:"purchased"`
	Asset     model.OwnedAsset `json:"asset"`
	Balance   float64          `json:"balance"`
}

type claimResponse struct {
	Claimed bool               `json:"claimed"`
	Reward  model.RewardNotice `json:"reward"`
}

type adResponse struct {
	Started bool `json:"started"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.game.GetState())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Catalog().Definitions())
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	notice, ok := s.game.Click()
	if !ok {
		http.Error(w, "game is closed", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}
	owned, ok, err := s.game.Purchase(id)
	if errors.Is(err, economy.ErrUnknownAsset) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
	}
	writeJSON(w, status, purchaseResponse{Purchased: ok, Asset: owned, Balance: s.game.GetState().Balance})
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	notice, ok := s.game.Claim(chi.URLParam(r, "id"))
	status := http.StatusOK
	if !ok {
		status = http.StatusGone
	}
	writeJSON(w, status, claimResponse{Claimed: ok, Reward: notice})
}

func (s *Server) handleMultiplier(w http.ResponseWriter, r *http.Request) {
	s.game.GrantTemporaryMultiplier()
	writeJSON(w, http.StatusOK, s.game.GetState().MultiplierWindow)
}

func (s *Server) handleAd(w http.ResponseWriter, r *http.Request) {
	started := s.game.WatchAd()
	status := http.StatusAccepted
	if !started {
		status = http.StatusConflict
	}
	writeJSON(w, status, adResponse{Started: started})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] write response: %v", err)
	}
}
