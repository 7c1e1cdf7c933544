package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coinsec/internal/config"
	"coinsec/internal/engine"
	"coinsec/internal/game"
	"coinsec/internal/session"
	"coinsec/internal/ton"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// defaultTransactionLimit caps purchase history responses when the caller
// does not pass an explicit limit.
const defaultTransactionLimit = 50

type Server struct {
	cfg      config.APIConfig
	log      *slog.Logger
	game     *engine.Service
	verifier ton.Verifier
	sessions *session.Registry
	mux      *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *engine.Service, verifier ton.Verifier, sessions *session.Registry) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		game:     gameSvc,
		verifier: verifier,
		sessions: sessions,
		mux:      chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/stocks", s.handleStocksList)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/boost", s.handleBoostInfo)
		r.Post("/verify-transaction", s.handleVerifyTransaction)

		r.Route("/players/{address}", func(r chi.Router) {
			r.Use(s.playerMiddleware)
			r.Get("/", s.handleFetch)
			r.Post("/", s.handlePush)
			r.Post("/tap", s.handleTap)
			r.Post("/tick", s.handleTick)
			r.Post("/upgrades/{upgrade}/buy", s.handleBuyUpgrade)
			r.Post("/investments/{stock}/buy", s.handleBuyStock)
			r.Get("/transactions", s.handleTransactions)
		})
	})
}

// playerMiddleware validates the wallet address and marks the player as
// online so the session ticker keeps their state moving.
func (s *Server) playerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := strings.TrimSpace(chi.URLParam(r, "address"))
		if addr == "" {
			writeError(w, http.StatusBadRequest, "missing wallet address")
			return
		}
		s.sessions.Touch(addr)
		next.ServeHTTP(w, r)
	})
}

func playerAddress(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "address"))
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.Fetch(r.Context(), playerAddress(r), r.URL.Query().Get("referral"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.game.Push(r.Context(), playerAddress(r), snap); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	res, err := s.game.Tap(r.Context(), playerAddress(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.Tick(r.Context(), playerAddress(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.BuyUpgrade(r.Context(), playerAddress(r), chi.URLParam(r, "upgrade"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBuyStock(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.game.BuyStock(r.Context(), playerAddress(r), chi.URLParam(r, "stock"), in.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := defaultTransactionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	out, err := s.game.Transactions(r.Context(), playerAddress(r), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleStocksList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stocks": game.Stocks})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.LeaderboardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	rows, err := s.game.Leaderboard(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// handleBoostInfo tells clients where to send the booster payment.
func (s *Server) handleBoostInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"recipient":       s.cfg.TonRecipient,
		"amount_nanoton":  s.cfg.BoosterPrice,
		"transfer_url":    ton.TransferURL(s.cfg.TonRecipient, s.cfg.BoosterPrice),
		"duration_millis": s.cfg.BoosterDuration.Milliseconds(),
	})
}

func (s *Server) handleVerifyTransaction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Address     string `json:"address"`
		BoosterType string `json:"boosterType"`
		ton.VerifyRequest
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	addr := strings.TrimSpace(in.Address)
	if addr == "" {
		writeError(w, http.StatusBadRequest, "missing wallet address")
		return
	}
	kind := strings.TrimSpace(in.BoosterType)
	if kind == "" {
		kind = "booster"
	}
	res, err := s.verifier.Verify(r.Context(), in.VerifyRequest)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if !res.Accepted {
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	snap, err := s.game.ApplyBooster(r.Context(), addr, kind, in.AmountNanoton, uuid.NewString())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.sessions.Touch(addr)
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true, "data": snap})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownUpgrade), errors.Is(err, game.ErrUnknownStock):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInsufficientPoints), errors.Is(err, game.ErrInvalidAmount), errors.Is(err, game.ErrMalformedSnapshot):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
