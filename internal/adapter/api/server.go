package api

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"cv-site/internal/adapter/repository"
	"cv-site/internal/auth"
	"cv-site/internal/domain"
	"cv-site/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Options configures the store API app.
type Options struct {
	CORSOrigins []string
	// AccessLog enables the per-request log line.
	AccessLog bool
}

// Handler serves the CV data API over a repository.
type Handler struct {
	repo     usecase.CVRepository
	verifier *auth.Verifier
}

func NewHandler(repo usecase.CVRepository, verifier *auth.Verifier) *Handler {
	return &Handler{repo: repo, verifier: verifier}
}

// App builds the fiber app with every route of the API.
func (h *Handler) App(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "cvstore",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	if len(opts.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(opts.CORSOrigins, ","),
			AllowHeaders: "Authorization, Content-Type, X-Request-ID",
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		}))
	}

	api := app.Group("/api")
	api.Get("/cv", h.GetCV)
	api.Get("/auth/me", h.Me)

	admin := api.Group("/admin", h.RequireAdmin)
	admin.Put("/personal-info", h.UpdatePersonalInfo)
	admin.Post("/:kind", h.CreateEntity)
	admin.Put("/:kind/:id", h.UpdateEntity)
	admin.Delete("/:kind/:id", h.DeleteEntity)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(code).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (h *Handler) GetCV(c *fiber.Ctx) error {
	doc, err := h.repo.GetCV(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// Me reports who the bearer token belongs to. Missing or invalid tokens
// are answered with authenticated=false, not an error status.
func (h *Handler) Me(c *fiber.Ctx) error {
	claims, err := h.claims(c)
	if err != nil {
		return c.JSON(domain.AuthUser{Authenticated: false})
	}
	return c.JSON(domain.AuthUser{Authenticated: true, Email: claims.Email, IsAdmin: claims.IsAdmin})
}

func (h *Handler) RequireAdmin(c *fiber.Ctx) error {
	claims, err := h.claims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	if !claims.IsAdmin {
		slog.Warn("admin call by non admin", "email", claims.Email, "path", c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
	c.Locals("email", claims.Email)
	return c.Next()
}

func (h *Handler) claims(c *fiber.Ctx) (*auth.Claims, error) {
	token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return h.verifier.Verify(token)
}

func (h *Handler) UpdatePersonalInfo(c *fiber.Ctx) error {
	var info domain.PersonalInfo
	if err := c.BodyParser(&info); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	saved, err := h.repo.UpdatePersonalInfo(c.UserContext(), info)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "personal info not found"})
	}
	if err != nil {
		return err
	}
	slog.Info("personal info updated", "by", c.Locals("email"))
	return c.JSON(saved)
}

func (h *Handler) CreateEntity(c *fiber.Ctx) error {
	kind, err := domain.KindFromPath(c.Params("kind"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown collection"})
	}
	e, err := domain.DecodeEntity(kind, c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	created, err := h.repo.CreateEntity(c.UserContext(), kind, e)
	if err != nil {
		return err
	}
	id, _ := created.EntityID()
	slog.Info("entity created", "kind", kind, "id", id, "by", c.Locals("email"))
	return c.JSON(created)
}

func (h *Handler) UpdateEntity(c *fiber.Ctx) error {
	kind, id, ok := entityRef(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown entity"})
	}
	e, err := domain.DecodeEntity(kind, c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	updated, err := h.repo.UpdateEntity(c.UserContext(), kind, id, e.WithID(id))
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "entity not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteEntity(c *fiber.Ctx) error {
	kind, id, ok := entityRef(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown entity"})
	}
	if err := h.repo.DeleteEntity(c.UserContext(), kind, id); err != nil {
		return err
	}
	slog.Info("entity deleted", "kind", kind, "id", id, "by", c.Locals("email"))
	return c.SendStatus(fiber.StatusNoContent)
}

func entityRef(c *fiber.Ctx) (domain.Kind, int64, bool) {
	kind, err := domain.KindFromPath(c.Params("kind"))
	if err != nil {
		return "", 0, false
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return kind, id, true
}
