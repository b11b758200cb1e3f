package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/insightdelivered/statement-normalizer/internal/extractor"
	"github.com/insightdelivered/statement-normalizer/internal/logger"
	"github.com/insightdelivered/statement-normalizer/internal/models"
	"github.com/insightdelivered/statement-normalizer/internal/parser"
)

// PageBreak separates pages in pre-extracted text sent as the "text" field.
const PageBreak = "---PAGE_BREAK---"

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	Format       models.Format        `json:"format,omitempty"`
	Bank         string               `json:"bank,omitempty"`
	Fallback     bool                 `json:"fallback"`
	Transactions []models.Transaction `json:"transactions"`
	TotalDebit   json.Number          `json:"totalDebit"`
	TotalCredit  json.Number          `json:"totalCredit"`
	Count        int                  `json:"count"`
	Skipped      int                  `json:"skipped"`
	Discarded    int                  `json:"discarded"`
	Version      string               `json:"version,omitempty"`
	DebugLines   []models.DebugLine   `json:"debugLines,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Version string
	Options []parser.Option
}

// NewApp returns a fiber app with the API routes registered. Requests log
// through the logger carried by ctx.
func NewApp(ctx context.Context, h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "statement-normalizer",
		BodyLimit:             32 << 20,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return writeError(c, code, err.Error())
		},
	})
	log := logger.FromContext(ctx)
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(logger.WithContext(c.UserContext(), log))
		return c.Next()
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// HandleConvert converts an uploaded document (form field "file") or
// pre-extracted text (form field "text") into transactions. The optional
// "format" field skips auto-detection; "debug=true" adds per-line diagnostics.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	pages, status, err := h.pages(c)
	if err != nil {
		return writeError(c, status, err.Error())
	}

	var format models.Format
	if name := c.FormValue("format"); name != "" {
		format, err = parser.ParseFormat(name)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	opts := h.Options
	if c.FormValue("debug") == "true" {
		opts = append(append([]parser.Option{}, opts...), parser.WithDiagnostics())
	}

	info, err := parser.ParsePages(pages, format, opts...)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	// nil marshals to JSON null, not []
	txns := info.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	debit, credit := info.Totals()
	resp := ConvertResponse{
		Success:      true,
		Format:       info.Format,
		Fallback:     info.Fallback,
		Transactions: txns,
		TotalDebit:   json.Number(debit.StringFixed(2)),
		TotalCredit:  json.Number(credit.StringFixed(2)),
		Count:        len(txns),
		Skipped:      info.Skipped,
		Discarded:    info.Discarded,
		Version:      h.Version,
		DebugLines:   info.DebugLines,
	}
	if f, ok := parser.Lookup(info.Format); ok {
		resp.Bank = f.Bank
	}

	log := logger.FromContext(c.UserContext())
	log.Info().
		Str("format", string(info.Format)).
		Bool("fallback", info.Fallback).
		Int("transactions", len(txns)).
		Msg("converted statement")

	return c.JSON(resp)
}

// pages returns the page texts of the request, from the "text" field when
// given, otherwise by extracting the uploaded file.
func (h *Handler) pages(c *fiber.Ctx) ([]string, int, error) {
	if text := c.FormValue("text"); strings.TrimSpace(text) != "" {
		return extractor.SplitPages(text, PageBreak), 0, nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.StatusBadRequest, errors.New("no document uploaded; use form field 'file' or 'text'")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".pdf" && ext != ".txt" {
		return nil, fiber.StatusBadRequest, fmt.Errorf("only .pdf and .txt files are supported, got %q", fh.Filename)
	}

	tmp, err := os.MkdirTemp("", "statement-*")
	if err != nil {
		return nil, fiber.StatusInternalServerError, errors.New("failed to create temp dir")
	}
	defer os.RemoveAll(tmp)

	path := filepath.Join(tmp, "upload"+ext)
	if err := c.SaveFile(fh, path); err != nil {
		return nil, fiber.StatusInternalServerError, errors.New("failed to save uploaded file")
	}

	pages, err := extractor.ExtractText(path)
	if err != nil {
		log := logger.FromContext(c.UserContext())
		log.Warn().Err(err).Str("file", fh.Filename).Msg("extraction failed")
		var extractErr *extractor.ExtractionError
		if errors.As(err, &extractErr) {
			err = extractErr.Err
		}
		return nil, fiber.StatusUnprocessableEntity, fmt.Errorf("extraction failed: %w", err)
	}
	return pages, 0, nil
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success:     false,
		Error:       msg,
		TotalDebit:  "0.00",
		TotalCredit: "0.00",
	})
}
