package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cv-site/internal/domain"
	"cv-site/internal/usecase"
	"cv-site/pkg/cvapi"
	"cv-site/pkg/cvapi/cvapitest"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminEmail = "ams.8@msn.com"

func ptr[T any](v T) *T { return &v }

func seedDoc() domain.CvDocument {
	return domain.CvDocument{
		PersonalInfo: domain.PersonalInfo{
			Name:                 "Abdulaziz Alsalyem",
			Title:                "QA Leader",
			LeadershipPointsJSON: `["Built the QA practice"]`,
			ExpertiseAreasJSON:   `[{"category":"Automation","skills":["Playwright","Cypress"]}]`,
		},
		WorkExperience: []domain.WorkExperience{
			{Ident: domain.Ident{ID: ptr(int64(1))}, Title: "QA Manager", Company: "SDAIA", Projects: "Tawakkalna, Sehhaty"},
		},
		Skills: []domain.Skill{
			{Ident: domain.Ident{ID: ptr(int64(2)), SortOrder: ptr(2)}, Name: "JMeter"},
			{Ident: domain.Ident{ID: ptr(int64(3)), SortOrder: ptr(1)}, Name: "Selenium"},
		},
	}
}

type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7"), nil
}

type fixture struct {
	site     *Site
	app      *fiber.App
	srv      *cvapitest.Server
	consoles *usecase.Consoles
}

func newFixture(t *testing.T, r Renderer) fixture {
	t.Helper()
	srv := cvapitest.NewServer(t, seedDoc())
	consoles := usecase.NewConsoles(func(token string) usecase.CVStore {
		return srv.Client(token)
	}, time.Hour)
	site, err := NewSite(Options{
		Client:   srv.Client(""),
		Consoles: consoles,
		Renderer: r,
		AuthURL:  "https://api.salyem.dev/oauth2/authorization/google",
	})
	require.NoError(t, err)
	return fixture{site: site, app: site.App(), srv: srv, consoles: consoles}
}

// browser replays cookies between requests the way a browser would.
type browser struct {
	t    *testing.T
	app  *fiber.App
	host string
	jar  map[string]string
}

func (f fixture) browser(t *testing.T, host string) *browser {
	return &browser{t: t, app: f.app, host: host, jar: map[string]string{}}
}

func (b *browser) do(method, target string, form url.Values) (*stdhttp.Response, string) {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, "http://"+b.host+target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range b.jar {
		req.AddCookie(&stdhttp.Cookie{Name: name, Value: value})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		if c.Value == "" || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(b.jar, c.Name)
			continue
		}
		b.jar[c.Name] = c.Value
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(raw)
}

func (b *browser) get(target string) (*stdhttp.Response, string) {
	return b.do(stdhttp.MethodGet, target, nil)
}

// post submits a console form and follows the redirect, if any.
func (b *browser) post(form url.Values) (*stdhttp.Response, string) {
	b.t.Helper()
	resp, body := b.do(stdhttp.MethodPost, "/console", form)
	if resp.StatusCode == stdhttp.StatusSeeOther {
		return b.get(resp.Header.Get("Location"))
	}
	return resp, body
}

func (b *browser) signIn(f fixture, admin bool) {
	b.t.Helper()
	b.jar[cookieToken] = f.srv.Token(b.t, adminEmail, admin)
}

func TestHomePage(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.browser(t, "salyem.dev").get("/")

	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Coming Soon")
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestCVPage(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("visitor", func(t *testing.T) {
		resp, body := f.browser(t, "cv.salyem.dev").get("/")

		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Abdulaziz Alsalyem")
		assert.Contains(t, body, "Built the QA practice")
		assert.Contains(t, body, "<span>Cypress</span>")
		assert.Contains(t, body, "<span>Sehhaty</span>")
		assert.Less(t, strings.Index(body, "Selenium</span>"), strings.Index(body, "JMeter</span>"))
		assert.NotContains(t, body, ">Admin</a>")
		assert.Contains(t, body, `class="dark"`)
	})

	t.Run("admin sees console link", func(t *testing.T) {
		b := f.browser(t, "localhost:3000")
		b.signIn(f, true)

		_, body := b.get("/cv")

		assert.Contains(t, body, `<a href="/console">Admin</a>`)
	})

	t.Run("rejected token is dropped", func(t *testing.T) {
		b := f.browser(t, "cv.localhost:5173")
		b.jar[cookieToken] = "garbage"

		resp, _ := b.get("/")

		assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		assert.NotContains(t, b.jar, cookieToken)
	})
}

func TestCVPageStoreDown(t *testing.T) {
	down := httptest.NewServer(stdhttp.NotFoundHandler())
	down.Close()
	client := &cvapi.Client{BaseURL: down.URL, HTTP: stdhttp.DefaultClient}
	site, err := NewSite(Options{Client: client, Consoles: usecase.NewConsoles(nil, 0)})
	require.NoError(t, err)

	b := &browser{t: t, app: site.App(), host: "cv.salyem.dev", jar: map[string]string{}}
	resp, body := b.get("/")

	assert.Equal(t, stdhttp.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Failed to load CV data")
}

func TestThemeToggle(t *testing.T) {
	f := newFixture(t, nil)
	b := f.browser(t, "localhost:3000")

	resp, _ := b.get("/theme?next=/cv")
	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cv", resp.Header.Get("Location"))
	assert.Equal(t, "light", b.jar[cookieTheme])

	_, body := b.get("/cv")
	assert.Contains(t, body, `class="light"`)
	assert.Contains(t, body, "Dark mode")

	resp, _ = b.get("/theme?next=//evil.example")
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, "dark", b.jar[cookieTheme])
}

func TestLocalPath(t *testing.T) {
	tests := map[string]string{
		"/cv":                 "/cv",
		"/console?tab=skills": "/console?tab=skills",
		"":                    "/",
		"https://x.y/":        "/",
		"//x.y":               "/",
		`/\x.y`:               "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, localPath(in), in)
	}
}

func TestCVPDF(t *testing.T) {
	t.Run("renders print layout", func(t *testing.T) {
		r := &fakeRenderer{}
		f := newFixture(t, r)

		resp, body := f.browser(t, "cv.salyem.dev").get("/cv.pdf")

		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		assert.Equal(t, "%PDF-1.7", body)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="cv.pdf"`)
		assert.Contains(t, r.html, "print light")
		assert.Contains(t, r.html, "Abdulaziz Alsalyem")
	})

	t.Run("renderer failure", func(t *testing.T) {
		f := newFixture(t, &fakeRenderer{err: errors.New("no chrome")})

		resp, body := f.browser(t, "cv.salyem.dev").get("/cv.pdf")

		assert.Equal(t, stdhttp.StatusBadGateway, resp.StatusCode)
		assert.Contains(t, body, "PDF export failed")
	})

	t.Run("no renderer", func(t *testing.T) {
		f := newFixture(t, nil)

		resp, _ := f.browser(t, "cv.salyem.dev").get("/cv.pdf")

		assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)
	})
}

func TestConsoleSignIn(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("login page", func(t *testing.T) {
		resp, body := f.browser(t, "admin.salyem.dev").get("/")

		assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Sign in with Google")
		assert.Contains(t, body, "https://api.salyem.dev/oauth2/authorization/google")
	})

	t.Run("token from query is moved to a cookie", func(t *testing.T) {
		b := f.browser(t, "localhost:3000")
		token := f.srv.Token(t, adminEmail, true)

		resp, _ := b.get("/console?token=" + token)

		assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/console", resp.Header.Get("Location"))
		assert.Equal(t, token, b.jar[cookieToken])

		resp, body := b.get("/console")
		assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		assert.Contains(t, body, adminEmail)
		assert.Contains(t, body, `value="Abdulaziz Alsalyem"`)
		assert.Equal(t, 1, f.consoles.Len())
	})

	t.Run("non admin is denied", func(t *testing.T) {
		b := f.browser(t, "localhost:3000")
		b.signIn(f, false)

		resp, body := b.get("/console")

		assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
		assert.Contains(t, body, "Access Denied")
		assert.Contains(t, body, "Sign out")
	})
}

func TestConsoleSaveEntity(t *testing.T) {
	f := newFixture(t, nil)
	b := f.browser(t, "localhost:3000")
	b.signIn(f, true)

	_, body := b.get("/console?tab=workExperience")
	require.Contains(t, body, `value="QA Manager"`)

	resp, body := b.post(url.Values{
		"tab":                                 {"workExperience"},
		"action":                              {"save:workExperience:0"},
		"f:workExperience.0.title":            {"QA Director"},
		"f:workExperience.0.responsibilities": {"Lead QA\r\nHire testers\r\n"},
	})

	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Experience updated!")
	assert.Contains(t, body, `value="QA Director"`)

	doc, err := f.srv.Repo.GetCV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "QA Director", doc.WorkExperience[0].Title)
	assert.Equal(t, []string{"Lead QA", "Hire testers"}, doc.WorkExperience[0].Responsibilities)

	_, body = b.get("/console?tab=workExperience")
	assert.NotContains(t, body, "Experience updated!", "flash is shown once")
}

func TestConsoleSavePersonalInfo(t *testing.T) {
	f := newFixture(t, nil)
	b := f.browser(t, "admin.localhost:5173")
	b.signIn(f, true)
	b.get("/")

	_, body := b.post(url.Values{
		"action":               {"add:leadershipPoints"},
		"f:personalInfo.title": {"QA Director"},
	})
	assert.Contains(t, body, `name="f:personalInfo.leadershipPoints.1"`)

	_, body = b.post(url.Values{
		"action":                                 {"save:personalInfo"},
		"f:personalInfo.leadershipPoints.1":      {"Mentored leads"},
		"f:personalInfo.expertiseAreas.0.skills": {"a, , b,c"},
	})
	assert.Contains(t, body, "Personal info saved!")

	doc, err := f.srv.Repo.GetCV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "QA Director", doc.PersonalInfo.Title)
	assert.JSONEq(t, `["Built the QA practice","Mentored leads"]`, doc.PersonalInfo.LeadershipPointsJSON)
	assert.JSONEq(t, `[{"category":"Automation","skills":["a","b","c"]}]`, doc.PersonalInfo.ExpertiseAreasJSON)
}

func TestConsoleDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(t, nil)
	b := f.browser(t, "localhost:3000")
	b.signIn(f, true)
	b.get("/console?tab=skills")

	resp, body := b.post(url.Values{"tab": {"skills"}, "action": {"delete:skills:2"}})

	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Delete this skill?")
	assert.Contains(t, body, `name="confirm" value="yes"`)
	doc, _ := f.srv.Repo.GetCV(context.Background())
	assert.Len(t, doc.Skills, 2)

	_, body = b.post(url.Values{"tab": {"skills"}, "action": {"delete:skills:2"}, "confirm": {"yes"}})

	assert.Contains(t, body, "Skill deleted!")
	assert.NotContains(t, body, `value="JMeter"`)
	doc, _ = f.srv.Repo.GetCV(context.Background())
	require.Len(t, doc.Skills, 1)
	assert.Equal(t, "Selenium", doc.Skills[0].Name)
}

func TestConsoleCreate(t *testing.T) {
	f := newFixture(t, nil)
	b := f.browser(t, "localhost:3000")
	b.signIn(f, true)
	b.get("/console")

	_, body := b.post(url.Values{"tab": {"certificates"}, "action": {"create:certificates"}})

	assert.Contains(t, body, "Certificate added!")
	assert.Contains(t, body, `value="New Certificate"`)
	assert.Contains(t, body, `value="delete:certificates:`)
	doc, _ := f.srv.Repo.GetCV(context.Background())
	require.Len(t, doc.Certificates, 1)
}

func TestConsoleRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil)
	b := f.browser(t, "localhost:3000")
	b.signIn(f, true)
	b.get("/console")

	_, body := b.post(url.Values{"tab": {"skills"}, "action": {"save:skills:0"}, "f:skills.9.name": {"x"}})
	assert.Contains(t, body, "Invalid input")

	_, body = b.post(url.Values{"tab": {"skills"}, "action": {"explode"}})
	assert.Contains(t, body, "Unknown action")

	_, body = b.post(url.Values{"tab": {"skills"}, "action": {"save:skills:5"}})
	assert.Contains(t, body, "Failed to update")
}

func TestConsoleExpiredSession(t *testing.T) {
	f := newFixture(t, nil)
	b := f.browser(t, "localhost:3000")
	b.signIn(f, true)
	b.jar[cookieConsole] = uuid.NewString()

	resp, body := b.post(url.Values{"tab": {"skills"}, "action": {"save:skills:0"}, "f:skills.0.name": {"x"}})

	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Console session expired, CV reloaded")
	doc, _ := f.srv.Repo.GetCV(context.Background())
	assert.Equal(t, "JMeter", doc.Skills[1].Name)
}

func TestConsoleActionNeedsAdmin(t *testing.T) {
	f := newFixture(t, nil)
	b := f.browser(t, "localhost:3000")
	b.signIn(f, false)

	resp, _ := b.do(stdhttp.MethodPost, "/console", url.Values{"action": {"create:skills"}})

	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 0, f.consoles.Len())
}

func TestConsoleLogout(t *testing.T) {
	f := newFixture(t, nil)
	b := f.browser(t, "localhost:3000")
	b.signIn(f, true)
	b.get("/console")
	require.Equal(t, 1, f.consoles.Len())

	resp, _ := b.do(stdhttp.MethodPost, "/console/logout", url.Values{})

	assert.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 0, f.consoles.Len())
	assert.NotContains(t, b.jar, cookieToken)
	assert.NotContains(t, b.jar, cookieConsole)

	_, body := b.get("/console")
	assert.Contains(t, body, "Sign in with Google")
}
