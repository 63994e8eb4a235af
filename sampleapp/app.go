// Package sampleapp is a small blog service (user accounts plus post CRUD)
// used as the application under test by this repository's examples and tests.
// It implements harness.App: the harness can open simulated clients against
// it, serve it on a live endpoint, and read its serving configuration.
package sampleapp

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/appunit/appunit/harness"
)

const sessionCookie = "session"

// Config configures a BlogApp.
type Config struct {
	// DSN of the sqlite database; empty or ":memory:" gives a private
	// throwaway database.
	DSN string
	// Settings are exposed through the harness Config lookup; the harness
	// reads "HOST" and "PORT" from here in live mode.
	Settings map[string]string
}

// BlogApp is the application under test.
type BlogApp struct {
	store    *Store
	router   chi.Router
	settings map[string]string
	sessions sessionStore
}

var _ harness.App = (*BlogApp)(nil)

// New constructs a configured application with an initialized database.
func New(cfg Config) (*BlogApp, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = ":memory:"
	}
	store, err := OpenStore(dsn)
	if err != nil {
		return nil, err
	}
	a := &BlogApp{
		store:    store,
		settings: cfg.Settings,
		sessions: sessionStore{tokens: make(map[string]int64)},
	}
	a.router = a.routes()
	return a, nil
}

// Close releases the application's database.
func (a *BlogApp) Close() error {
	return a.store.Close()
}

// Handler exposes the application's HTTP handler.
func (a *BlogApp) Handler() http.Handler {
	return a.router
}

// Store exposes the persistence layer for test arrangements.
func (a *BlogApp) Store() *Store {
	return a.store
}

// Client opens a simulated in-process client; see Client in this package.
func (a *BlogApp) Client(useCookies bool, opts ldvalue.Value) (harness.Client, error) {
	return newClient(a, useCookies, opts), nil
}

// Serve runs the application on a real socket until the process exits.
func (a *BlogApp) Serve(host string, port int) error {
	srv := &http.Server{
		Addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		Handler: a.router,
	}
	return srv.ListenAndServe()
}

// Config implements the harness configuration lookup.
func (a *BlogApp) Config(key string) (string, bool) {
	v, ok := a.settings[key]
	return v, ok
}

func (a *BlogApp) routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/auth/register", a.handleRegister)
	r.Post("/auth/login", a.handleLogin)
	r.Post("/auth/logout", a.handleLogout)
	r.Get("/posts", a.handleListPosts)
	r.Post("/posts", a.handleCreatePost)
	r.Get("/posts/{id}", a.handleGetPost)
	r.Put("/posts/{id}", a.handleUpdatePost)
	r.Delete("/posts/{id}", a.handleDeletePost)
	return r
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type postInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (a *BlogApp) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if !readJSON(w, r, &creds) {
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	id, err := a.store.CreateUser(creds.Username, hash)
	if errors.Is(err, ErrUsernameTaken) {
		writeError(w, http.StatusConflict, "username already registered")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "username": creds.Username})
}

func (a *BlogApp) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if !readJSON(w, r, &creds) {
		return
	}
	user, err := a.store.UserByName(creds.Username)
	if err == nil {
		err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password))
	}
	if err != nil {
		writeError(w, http.StatusUnauthorized, "incorrect username or password")
		return
	}
	token := a.sessions.create(user.ID)
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{"username": user.Username})
}

func (a *BlogApp) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		a.sessions.drop(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (a *BlogApp) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.store.Posts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if posts == nil {
		posts = []Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (a *BlogApp) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	var in postInput
	if !readJSON(w, r, &in) {
		return
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	id, err := a.store.CreatePost(userID, in.Title, in.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (a *BlogApp) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := a.findPost(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (a *BlogApp) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	post, ok := a.requireOwnPost(w, r)
	if !ok {
		return
	}
	var in postInput
	if !readJSON(w, r, &in) {
		return
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := a.store.UpdatePost(post.ID, in.Title, in.Body); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": post.ID})
}

func (a *BlogApp) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := a.requireOwnPost(w, r)
	if !ok {
		return
	}
	if err := a.store.DeletePost(post.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *BlogApp) findPost(w http.ResponseWriter, r *http.Request) (Post, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return Post{}, false
	}
	post, err := a.store.Post(id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "no such post")
		return Post{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return Post{}, false
	}
	return post, true
}

func (a *BlogApp) requireOwnPost(w http.ResponseWriter, r *http.Request) (Post, bool) {
	userID, ok := a.currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return Post{}, false
	}
	post, ok := a.findPost(w, r)
	if !ok {
		return Post{}, false
	}
	if post.AuthorID != userID {
		writeError(w, http.StatusForbidden, "not your post")
		return Post{}, false
	}
	return post, true
}

func (a *BlogApp) currentUser(r *http.Request) (int64, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return 0, false
	}
	return a.sessions.lookup(cookie.Value)
}

type sessionStore struct {
	mu     sync.RWMutex
	tokens map[string]int64
}

func (s *sessionStore) create(userID int64) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	token := hex.EncodeToString(b)
	s.mu.Lock()
	s.tokens[token] = userID
	s.mu.Unlock()
	return token
}

func (s *sessionStore) lookup(token string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[token]
	return id, ok
}

func (s *sessionStore) drop(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

func readJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
