package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mcq-quiz-service/internal/app"
	"mcq-quiz-service/internal/domain"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Handler exposes the quiz service over REST plus a websocket results feed.
type Handler struct {
	service  *app.QuizService
	auth     *Authenticator
	upgrader websocket.Upgrader
}

func NewHandler(service *app.QuizService, auth *Authenticator) *Handler {
	return &Handler{
		service: service,
		auth:    auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router wires all routes. Participant routes are unauthenticated; admin
// routes are behind RequireAdmin.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/admin/login", h.adminLogin).Methods(http.MethodPost)

	api.HandleFunc("/quiz/active", h.activeQuestions).Methods(http.MethodGet)
	api.HandleFunc("/quiz/duration", h.quizDuration).Methods(http.MethodGet)
	api.HandleFunc("/quiz/submit", h.submitQuiz).Methods(http.MethodPost)

	api.HandleFunc("/questions", h.auth.RequireAdmin(h.listQuestions)).Methods(http.MethodGet)
	api.HandleFunc("/questions", h.auth.RequireAdmin(h.createQuestion)).Methods(http.MethodPost)
	// Registered ahead of /questions/{id} so "timer" is not taken as an id.
	api.HandleFunc("/questions/timer", h.auth.RequireAdmin(h.updateAllTimers)).Methods(http.MethodPut)
	api.HandleFunc("/questions/{id}", h.auth.RequireAdmin(h.getQuestion)).Methods(http.MethodGet)
	api.HandleFunc("/questions/{id}", h.auth.RequireAdmin(h.updateQuestion)).Methods(http.MethodPut)
	api.HandleFunc("/questions/{id}", h.auth.RequireAdmin(h.deleteQuestion)).Methods(http.MethodDelete)

	api.HandleFunc("/quiz/settings", h.auth.RequireAdmin(h.getSettings)).Methods(http.MethodGet)
	api.HandleFunc("/quiz/settings", h.auth.RequireAdmin(h.updateSettings)).Methods(http.MethodPut)

	api.HandleFunc("/quiz/results", h.auth.RequireAdmin(h.listResults)).Methods(http.MethodGet)
	api.HandleFunc("/quiz/results/feed", h.auth.RequireAdminFeed(h.resultsFeed)).Methods(http.MethodGet)
	api.HandleFunc("/quiz/results/{id}", h.auth.RequireAdmin(h.getResult)).Methods(http.MethodGet)
	api.HandleFunc("/quiz/results/{id}", h.auth.RequireAdmin(h.deleteResult)).Methods(http.MethodDelete)

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type submitRequest struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	// nil when the field is absent from the request body, which is a
	// validation error; an empty array is a valid (unanswered) submission.
	Answers []int `json:"answers"`
}

type timerRequest struct {
	Timer int `json:"timer"`
}

type durationResponse struct {
	Duration int `json:"duration"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Email and password are required"})
		return
	}
	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: loginUser{Email: req.Email, Role: "admin"}})
}

func (h *Handler) activeQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.ActiveQuestions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) quizDuration(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, durationResponse{Duration: settings.DurationMinutes})
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}
	summary, err := h.service.SubmitQuiz(r.Context(), domain.Identity{Name: req.UserName, Email: req.UserEmail}, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.ListQuestions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var question domain.Question
	if err := json.NewDecoder(r.Body).Decode(&question); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}
	created, err := h.service.CreateQuestion(r.Context(), question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.GetQuestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var question domain.Question
	if err := json.NewDecoder(r.Body).Decode(&question); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}
	updated, err := h.service.UpdateQuestion(r.Context(), mux.Vars(r)["id"], question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuestion(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Question deleted successfully"})
}

func (h *Handler) updateAllTimers(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}
	if err := h.service.UpdateAllTimers(r.Context(), req.Timer); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Timer updated successfully"})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.QuizSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}
	updated, err := h.service.UpdateSettings(r.Context(), settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListResults(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []domain.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) getResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetResult(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) deleteResult(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteResult(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Result deleted successfully"})
}

type feedMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// resultsFeed upgrades to a websocket and streams every newly appended result
// until the client disconnects. A ready message is sent once the subscription
// is live so clients know no submission can slip past them.
func (h *Handler) resultsFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.service.Feed().Subscribe()
	defer cancel()

	if err := conn.WriteJSON(feedMessage{Type: "ready"}); err != nil {
		log.Printf("ws write error: %v", err)
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case result, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(feedMessage{Type: "result", Payload: result}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps domain errors onto status codes. Unknown errors are logged
// and surfaced as a generic 500 so store internals never leak to callers.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNoQuestions):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrResultNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Not authorized"})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Server error"})
	}
}
