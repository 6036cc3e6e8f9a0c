// Package cvapitest runs the CV data API over an in-memory repository for
// tests of its clients.
package cvapitest

import (
	"net/http/httptest"
	"testing"
	"time"

	"cv-site/internal/adapter/api"
	"cv-site/internal/adapter/repository"
	"cv-site/internal/auth"
	"cv-site/internal/domain"
	"cv-site/pkg/cvapi"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

const Secret = "cvapitest-secret"

type Server struct {
	*httptest.Server
	Repo     *repository.Memory
	Verifier *auth.Verifier
}

// NewServer starts a server seeded with doc. It is closed when the test ends.
func NewServer(t testing.TB, doc domain.CvDocument) *Server {
	t.Helper()
	repo := repository.NewMemory(doc)
	v := auth.NewVerifier(Secret)
	app := api.NewHandler(repo, v).App(api.Options{})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return &Server{Server: srv, Repo: repo, Verifier: v}
}

// Token mints a token valid for one hour.
func (s *Server) Token(t testing.TB, email string, admin bool) string {
	t.Helper()
	tok, err := s.Verifier.Issue(email, admin, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

// Client returns a client for the server authenticating as token, which may
// be empty.
func (s *Server) Client(token string) *cvapi.Client {
	return &cvapi.Client{BaseURL: s.URL, HTTP: s.Server.Client(), Token: token}
}
