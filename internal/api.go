package internal

import (
	"collab-lab/errors"
	"collab-lab/services"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// API exposes the account and document-library collaborators over
// HTTP/JSON. The realtime core is deliberately absent: delivery
// channels come from whatever transport hosts the coordinator.
type API struct {
	log       *slog.Logger
	auth      services.IAuthService
	documents services.IDocumentService
}

func NewAPI(log *slog.Logger, auth services.IAuthService, documents services.IDocumentService) *API {
	return &API{log: log, auth: auth, documents: documents}
}

func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", a.handleRegister)
	mux.HandleFunc("POST /auth/login", a.handleLogin)
	mux.HandleFunc("POST /auth/logout", a.handleLogout)
	mux.HandleFunc("GET /auth/me", a.handleCurrentUser)
	mux.HandleFunc("POST /documents", a.handleCreateDocument)
	mux.HandleFunc("GET /documents", a.handleListDocuments)
	mux.HandleFunc("GET /documents/search", a.handleSearchDocuments)
	mux.HandleFunc("GET /documents/{id}", a.handleGetDocument)
	mux.HandleFunc("PATCH /documents/{id}", a.handleUpdateDocument)
	mux.HandleFunc("DELETE /documents/{id}", a.handleDeleteDocument)
	return mux
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := a.auth.Register(req.Email, req.Password)
	if err != nil {
		a.writeError(w, statusFor(err), err)
		return
	}
	a.writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := a.auth.Login(req.Email, req.Password)
	if err != nil {
		a.writeError(w, statusFor(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.auth.Logout(services.Token(bearerToken(r)))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.auth.CurrentUser(services.Token(bearerToken(r)))
	if err != nil {
		a.writeError(w, http.StatusUnauthorized, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"roles": user.Roles,
	})
}

type documentRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (a *API) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("title is required"))
		return
	}

	content := ""
	if req.Content != nil {
		content = *req.Content
	}
	doc, err := a.documents.Create(user, *req.Title, content)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, doc)
}

func (a *API) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	docs, err := a.documents.List(user)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeJSON(w, http.StatusOK, docs)
}

func (a *API) handleSearchDocuments(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	docs, err := a.documents.Search(r.Context(), user, r.URL.Query().Get("q"))
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeJSON(w, http.StatusOK, docs)
}

func (a *API) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	doc, err := a.documents.Get(user, r.PathValue("id"))
	if err != nil {
		a.writeError(w, statusFor(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, doc)
}

func (a *API) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	doc, err := a.documents.Update(user, r.PathValue("id"), req.Title, req.Content)
	if err != nil {
		a.writeError(w, statusFor(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, doc)
}

func (a *API) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	if err := a.documents.Delete(user, r.PathValue("id")); err != nil {
		a.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireUser resolves the bearer token to an account id or writes 401.
func (a *API) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := a.auth.CurrentUser(services.Token(bearerToken(r)))
	if err != nil {
		a.writeError(w, http.StatusUnauthorized, err)
		return "", false
	}
	return user.ID, true
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func statusFor(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrDocumentNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrInvalidCredentials), stderrors.Is(err, errors.ErrTokenRevoked):
		return http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrInvalidPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.log.Error("Response encoding failed", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}
