package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"cv-site/internal/session"
	"cv-site/internal/usecase"
	"cv-site/pkg/cvapi"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
)

// Renderer prints an HTML page to PDF.
type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

const (
	cookieToken   = "token"
	cookieTheme   = "theme"
	cookieConsole = "console"
	cookieFlash   = "flash"

	flashTTL = 3 * time.Second
)

type Options struct {
	Client    *cvapi.Client
	Consoles  *usecase.Consoles
	// Renderer is optional; without it /cv.pdf answers 404.
	Renderer  Renderer
	AuthURL   string
	AccessLog bool
}

// Site serves the public pages and the admin console.
type Site struct {
	client    *cvapi.Client
	consoles  *usecase.Consoles
	renderer  Renderer
	authURL   string
	accessLog bool
	tpl       *template.Template
	now       func() time.Time
}

func NewSite(opts Options) (*Site, error) {
	if opts.Client == nil || opts.Consoles == nil {
		return nil, errors.New("site needs a store client and a console registry")
	}
	tpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Site{
		client:    opts.Client,
		consoles:  opts.Consoles,
		renderer:  opts.Renderer,
		authURL:   opts.AuthURL,
		accessLog: opts.AccessLog,
		tpl:       tpl,
		now:       time.Now,
	}, nil
}

func (s *Site) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorPage,
	})
	app.Use(recover.New())
	if s.accessLog {
		app.Use(logger.New())
	}

	app.Get("/theme", s.toggleTheme)
	app.Get("/cv.pdf", s.cvPDF)
	app.Post("/console", s.consoleAction)
	app.Post("/console/logout", s.logout)
	app.Get("/*", s.page)
	return app
}

func (s *Site) page(c *fiber.Ctx) error {
	switch PageFor(c.Hostname(), c.Path()) {
	case PageConsole:
		return s.console(c)
	case PageCV:
		return s.cv(c)
	}
	return s.render(c, fiber.StatusOK, "home", pageView{Theme: s.theme(c)})
}

func (s *Site) cv(c *fiber.Ctx) error {
	doc, err := s.client.FetchCV(c.UserContext())
	if err != nil {
		slog.Error("Failed to load CV data", "error", err)
		return s.render(c, fiber.StatusBadGateway, "error", pageView{
			Theme:   s.theme(c),
			Title:   "CV unavailable",
			Message: "Failed to load CV data. Please try again later.",
		})
	}
	sess := s.session(c)
	return s.render(c, fiber.StatusOK, "cv", newCVView(doc, sess.Theme(), sess.IsAdmin(), s.now()))
}

func (s *Site) cvPDF(c *fiber.Ctx) error {
	if s.renderer == nil {
		return fiber.ErrNotFound
	}
	doc, err := s.client.FetchCV(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "Failed to load CV data.")
	}
	view := newCVView(doc, session.ThemeLight, false, s.now())
	view.Print = true

	var buf bytes.Buffer
	if err := s.tpl.ExecuteTemplate(&buf, "cv", view); err != nil {
		return fmt.Errorf("render cv: %w", err)
	}
	pdf, err := s.renderer.RenderHTMLToPDF(c.UserContext(), buf.String())
	if err != nil {
		slog.Error("pdf export failed", "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "PDF export failed.")
	}
	c.Attachment("cv.pdf")
	return c.Send(pdf)
}

func (s *Site) toggleTheme(c *fiber.Ctx) error {
	next := s.theme(c).Toggle()
	s.setCookie(c, cookieTheme, string(next), s.now().AddDate(1, 0, 0))
	return c.Redirect(localPath(c.Query("next")), fiber.StatusSeeOther)
}

// session resolves the token cookie into a user. A token the store no
// longer accepts is dropped from the browser too.
func (s *Site) session(c *fiber.Ctx) *session.Session {
	// The token outlives the request in the console registry.
	token := utils.CopyString(c.Cookies(cookieToken))
	store := session.NewMemoryStore(token, s.theme(c))
	sess := session.New(store, func(token string) session.Identity {
		return s.client.WithToken(token)
	})
	if err := sess.Init(c.UserContext()); err != nil {
		slog.Warn("session init failed", "error", err)
	}
	if token != "" && store.Token() == "" {
		s.clearCookie(c, cookieToken)
	}
	return sess
}

func (s *Site) theme(c *fiber.Ctx) session.Theme {
	return session.ParseTheme(c.Cookies(cookieTheme))
}

func (s *Site) render(c *fiber.Ctx, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := s.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

func (s *Site) errorPage(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	view := pageView{Theme: s.theme(c), Title: utils.StatusMessage(code), Message: msg}
	if rerr := s.render(c, code, "error", view); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

func (s *Site) setCookie(c *fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: name != cookieTheme,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Site) clearCookie(c *fiber.Ctx, name string) {
	s.setCookie(c, name, "", time.Unix(0, 0))
}

// flash stores msg for the next page view only.
func (s *Site) flash(c *fiber.Ctx, msg string) {
	if msg == "" {
		return
	}
	s.setCookie(c, cookieFlash, url.QueryEscape(msg), s.now().Add(flashTTL))
}

func (s *Site) takeFlash(c *fiber.Ctx) string {
	raw := c.Cookies(cookieFlash)
	if raw == "" {
		return ""
	}
	s.clearCookie(c, cookieFlash)
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}

// localPath keeps redirects on this site.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
