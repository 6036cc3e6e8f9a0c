package http

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"cv-site/internal/session"
	"cv-site/internal/usecase"
	"cv-site/pkg/cvapi"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const fieldPrefix = "f:"

func (s *Site) console(c *fiber.Ctx) error {
	if token := c.Query("token"); token != "" {
		s.setCookie(c, cookieToken, token, s.now().AddDate(0, 0, 30))
		return c.Redirect(c.Path(), fiber.StatusSeeOther)
	}

	sess := s.session(c)
	user := sess.User()
	view := pageView{Theme: sess.Theme(), AuthURL: s.authURL, Email: user.Email}
	switch {
	case !user.Authenticated:
		return s.render(c, fiber.StatusOK, "login", view)
	case !user.IsAdmin:
		return s.render(c, fiber.StatusForbidden, "denied", view)
	}

	flash := s.takeFlash(c)
	cs, fresh, err := s.openConsole(c, sess)
	if fresh && err != nil {
		flash = "Failed to load"
	}
	doc, loaded := cs.Sync.Document()
	return s.render(c, fiber.StatusOK, "console", newConsoleView(user, sess.Theme(), doc, loaded, c.Query("tab"), flash))
}

func (s *Site) consoleAction(c *fiber.Ctx) error {
	tab := normalizeTab(c.FormValue("tab"))
	back := "/console?tab=" + tab

	sess := s.session(c)
	if !sess.IsAdmin() {
		return c.Redirect("/console", fiber.StatusSeeOther)
	}
	cs, fresh, err := s.openConsole(c, sess)
	if fresh {
		// Posted indexes refer to a document this console never had.
		if err != nil {
			s.flash(c, "Failed to load")
		} else {
			s.flash(c, "Console session expired, CV reloaded")
		}
		return c.Redirect(back, fiber.StatusSeeOther)
	}

	if err := applyFields(c, cs.Sync); err != nil {
		slog.Warn("console edit rejected", "session", cs.ID, "error", err)
		s.flash(c, "Invalid input")
		return c.Redirect(back, fiber.StatusSeeOther)
	}

	action, err := usecase.ParseAction(c.FormValue("action", string(usecase.OpEdit)))
	if err != nil {
		s.flash(c, "Unknown action")
		return c.Redirect(back, fiber.StatusSeeOther)
	}

	msg, err := action.Apply(c.UserContext(), cs.Sync, c.FormValue("confirm") == "yes")
	switch {
	case errors.Is(err, usecase.ErrNotConfirmed):
		doc, loaded := cs.Sync.Document()
		view := newConsoleView(sess.User(), sess.Theme(), doc, loaded, tab, "")
		view.Confirm = &confirmView{
			Prompt: fmt.Sprintf("Delete this %s?", strings.ToLower(action.Kind.Label())),
			Action: action.String(),
		}
		return s.render(c, fiber.StatusOK, "console", view)
	case errors.Is(err, cvapi.ErrUnauthorized):
		slog.Warn("console token rejected", "session", cs.ID, "action", action.String())
		s.consoles.Close(cs.ID)
		s.clearCookie(c, cookieToken)
		s.clearCookie(c, cookieConsole)
		s.flash(c, "Session expired, please sign in again")
		return c.Redirect("/console", fiber.StatusSeeOther)
	case err != nil:
		slog.Error("console action failed", "session", cs.ID, "action", action.String(), "error", err)
		if msg == "" {
			msg = "Failed to update"
		}
	}
	s.flash(c, msg)
	return c.Redirect(back, fiber.StatusSeeOther)
}

func (s *Site) logout(c *fiber.Ctx) error {
	if id, err := uuid.Parse(c.Cookies(cookieConsole)); err == nil {
		s.consoles.Close(id)
	}
	s.clearCookie(c, cookieToken)
	s.clearCookie(c, cookieConsole)
	return c.Redirect("/console", fiber.StatusSeeOther)
}

// openConsole returns the console named by the console cookie. When there is
// none for this token a new one is opened and loaded; fresh reports that,
// and err is the result of the first load.
func (s *Site) openConsole(c *fiber.Ctx, sess *session.Session) (cs *usecase.ConsoleSession, fresh bool, err error) {
	if id, err := uuid.Parse(c.Cookies(cookieConsole)); err == nil {
		if cs, ok := s.consoles.Get(id, sess.Token()); ok {
			return cs, false, nil
		}
	}
	cs, err = s.consoles.Open(c.UserContext(), sess.Token(), sess.User())
	s.setCookie(c, cookieConsole, cs.ID.String(), s.now().AddDate(0, 0, 1))
	return cs, true, err
}

// applyFields writes every posted f:<path> value into the document.
func applyFields(c *fiber.Ctx, sync *usecase.Synchronizer) error {
	fields := map[string]string{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		if name := string(k); strings.HasPrefix(name, fieldPrefix) {
			fields[strings.TrimPrefix(name, fieldPrefix)] = string(v)
		}
	})
	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := sync.SetField(p, fields[p]); err != nil {
			return err
		}
	}
	return nil
}
