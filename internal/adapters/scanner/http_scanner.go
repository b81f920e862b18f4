package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/core"
	"github.com/mikey/binsight/internal/profile"
)

// HTTPScanner exposes the classifier and the item store over a JSON API.
// It is the frontend a mobile or web client talks to.
type HTTPScanner struct {
	app      *fiber.App
	service  *core.ClassifierService
	store    core.ItemStore
	profiles *profile.Store
	logger   *zap.Logger
	addr     string
}

// NewHTTPScanner creates a new HTTP frontend listening on addr
func NewHTTPScanner(
	service *core.ClassifierService,
	store core.ItemStore,
	profiles *profile.Store,
	logger *zap.Logger,
	addr string,
	maxBodySize int,
) (*HTTPScanner, error) {
	app := fiber.New(fiber.Config{
		AppName:               "binsight",
		DisableStartupMessage: true,
		BodyLimit:             maxBodySize,
	})

	s := &HTTPScanner{
		app:      app,
		service:  service,
		store:    store,
		profiles: profiles,
		logger:   logger,
		addr:     addr,
	}
	s.registerRoutes()
	return s, nil
}

func (s *HTTPScanner) registerRoutes() {
	s.app.Get("/healthz", s.handleHealth)

	api := s.app.Group("/api/v1")
	api.Post("/scan", s.handleScan)
	api.Get("/items", s.handleListItems)
	api.Delete("/items/:id", s.handleDeleteItem)
	api.Delete("/items", s.handleWipeItems)
	api.Get("/profile", s.handleGetProfile)
	api.Put("/profile", s.handleUpdateProfile)
	api.Post("/login", s.handleLogin)
}

// Start begins serving HTTP requests in a background goroutine
func (s *HTTPScanner) Start() error {
	s.logger.Info("Starting HTTP scan frontend", zap.String("addr", s.addr))
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *HTTPScanner) Stop() error {
	s.logger.Info("Stopping HTTP scan frontend")
	return s.app.Shutdown()
}

func (s *HTTPScanner) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type scanResponse struct {
	Label       string  `json:"label"`
	Category    string  `json:"category"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
	ModelUsed   string  `json:"model_used"`
	SavedItem   *item   `json:"saved_item,omitempty"`
}

type item struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

func toItem(it *core.Item) *item {
	return &item{
		ID:         it.ID,
		Name:       it.Name,
		Category:   string(it.Category),
		Confidence: it.Confidence,
		Timestamp:  it.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// handleScan classifies an uploaded photo. The image arrives either as the
// multipart form file "image" or as the raw request body. Form fields:
// save=true persists the result, with optional name and category overrides.
func (s *HTTPScanner) handleScan(c *fiber.Ctx) error {
	image, err := s.imageFromRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if len(image) == 0 {
		return badRequest(c, "no image provided")
	}

	result, err := s.service.Classify(c.Context(), image)
	if err != nil {
		return s.classifyError(c, err)
	}

	resp := scanResponse{
		Label:       result.Label,
		Category:    string(result.Category),
		DisplayName: result.Category.DisplayName(),
		Confidence:  result.Confidence,
		ModelUsed:   result.ModelUsed,
	}

	if c.FormValue("save") == "true" {
		name := c.FormValue("name")
		if name == "" {
			name = result.Label
		}
		category := result.Category
		if v := c.FormValue("category"); v != "" {
			parsed, err := core.ParseCategory(v)
			if err != nil {
				return badRequest(c, err.Error())
			}
			category = parsed
		}

		saved, err := s.store.Create(c.Context(), name, category, result.Confidence, image, time.Now())
		if err != nil {
			return s.storeError(c, err)
		}
		resp.SavedItem = toItem(saved)
	}

	return c.JSON(resp)
}

func (s *HTTPScanner) imageFromRequest(c *fiber.Ctx) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// No multipart file; fall back to the raw body.
		return c.Body(), nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *HTTPScanner) handleListItems(c *fiber.Ctx) error {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return badRequest(c, "limit must be a non-negative integer")
		}
		limit = n
	}

	items, err := s.store.List(c.Context(), limit)
	if err != nil {
		return s.storeError(c, err)
	}

	out := make([]*item, 0, len(items))
	for _, it := range items {
		out = append(out, toItem(it))
	}
	return c.JSON(fiber.Map{"items": out})
}

func (s *HTTPScanner) handleDeleteItem(c *fiber.Ctx) error {
	if err := s.store.Delete(c.Context(), c.Params("id")); err != nil {
		return s.storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPScanner) handleWipeItems(c *fiber.Ctx) error {
	if err := s.store.WipeAll(c.Context()); err != nil {
		return s.storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type profileResponse struct {
	Name             string   `json:"name"`
	PrimaryEmail     string   `json:"primary_email"`
	AdditionalEmails []string `json:"additional_emails,omitempty"`
	Username         string   `json:"username,omitempty"`
	HasPassword      bool     `json:"has_password"`
}

func (s *HTTPScanner) handleGetProfile(c *fiber.Ctx) error {
	p := s.profiles.Profile()
	return c.JSON(profileResponse{
		Name:             p.Name,
		PrimaryEmail:     p.PrimaryEmail,
		AdditionalEmails: p.AdditionalEmails,
		Username:         p.Username,
		HasPassword:      p.PasswordHash != "",
	})
}

type updateProfileRequest struct {
	Name             string   `json:"name"`
	PrimaryEmail     string   `json:"primary_email"`
	AdditionalEmails []string `json:"additional_emails"`
	Username         string   `json:"username"`
	Password         string   `json:"password"`
}

func (s *HTTPScanner) handleUpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid profile payload")
	}

	err := s.profiles.Update(profile.Profile{
		Name:             req.Name,
		PrimaryEmail:     req.PrimaryEmail,
		AdditionalEmails: req.AdditionalEmails,
		Username:         req.Username,
		Password:         req.Password,
	})
	if err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update profile"})
	}
	return s.handleGetProfile(c)
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *HTTPScanner) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid login payload")
	}
	if !s.profiles.VerifyPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *HTTPScanner) classifyError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, core.ErrInvalidImage):
		return badRequest(c, err.Error())
	case errors.Is(err, core.ErrNoResult):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": "classification timed out"})
	default:
		s.logger.Error("Vision provider failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "vision provider unavailable"})
	}
}

func (s *HTTPScanner) storeError(c *fiber.Ctx, err error) error {
	var storeErr *core.StoreError
	if errors.As(err, &storeErr) {
		s.logger.Error("Item store failed", zap.String("op", storeErr.Op), zap.Error(err))
	} else {
		s.logger.Error("Item store failed", zap.Error(err))
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "item store unavailable"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
