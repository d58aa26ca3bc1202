// Package http exposes the admin-facing REST boundary: quiz catalog
// CRUD, game creation, and QR join codes. Live gameplay never passes
// through here; it lives on the websocket.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/catalog"
)

// CatalogStore is the quiz persistence the API sits on (file or Postgres).
type CatalogStore interface {
	List(ctx context.Context) ([]domain.Quiz, error)
	Get(ctx context.Context, id string) (domain.Quiz, error)
	Create(ctx context.Context, in catalog.QuizInput) (domain.Quiz, error)
	Delete(ctx context.Context, id string) error
}

// API wires the REST routes onto an httprouter.
type API struct {
	catalog CatalogStore
	service *app.GameService
	baseURL string
}

func NewAPI(catalog CatalogStore, service *app.GameService, baseURL string) *API {
	return &API{catalog: catalog, service: service, baseURL: baseURL}
}

// Register mounts all routes, including the websocket upgrade.
func (a *API) Register(router *httprouter.Router, serveWS http.HandlerFunc) {
	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Write([]byte("ok"))
	})
	router.GET("/api/quizzes", a.listQuizzes)
	router.GET("/api/quiz/:id", a.getQuiz)
	router.POST("/api/quiz", a.createQuiz)
	router.DELETE("/api/quiz/:id", a.deleteQuiz)
	router.POST("/api/create-game", a.createGame)
	router.GET("/api/game/:code/qr", a.gameQR)
	router.HandlerFunc(http.MethodGet, "/ws", serveWS)
}

func (a *API) listQuizzes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	quizzes, err := a.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load quizzes")
		log.Printf("list quizzes: %v", err)
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) getQuiz(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	quiz, err := a.catalog.Get(r.Context(), ps.ByName("id"))
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load quiz")
		log.Printf("get quiz: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) createQuiz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in catalog.QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quiz, err := a.catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save quiz")
		log.Printf("create quiz: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) deleteQuiz(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := a.catalog.Delete(r.Context(), ps.ByName("id"))
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete quiz")
		log.Printf("delete quiz: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type createGameRequest struct {
	Host   string `json:"host"`
	QuizID string `json:"quizId"`
}

type createGameResponse struct {
	GameCode  string `json:"gameCode"`
	QuizTitle string `json:"quizTitle"`
}

func (a *API) createGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		writeError(w, http.StatusBadRequest, "quiz ID is required")
		return
	}

	code, title, err := a.service.CreateSession(r.Context(), req.Host, req.QuizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create game")
		log.Printf("create game: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, createGameResponse{GameCode: code, QuizTitle: title})
}

// gameQR renders the join link for a live game as a QR PNG, for
// projecting next to the lobby screen.
func (a *API) gameQR(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if _, ok := a.service.Lookup(code); !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s/game/%s", a.baseURL, code), qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render QR code")
		log.Printf("qr encode: %v", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
