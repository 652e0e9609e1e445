package consent

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Granter records and withdraws payer consent.
type Granter interface {
	Grant(ctx context.Context, payerID string, limit decimal.Decimal) error
	Revoke(ctx context.Context, payerID string) error
}

// Handler exposes consent management endpoints.
type Handler struct {
	grants Granter
}

// NewHandler builds a consent handler.
func NewHandler(grants Granter) *Handler {
	return &Handler{grants: grants}
}

type grantRequest struct {
	Limit decimal.Decimal `json:"limit"`
}

// Grant stores a spending limit for the payer in the path.
func (h *Handler) Grant(c *fiber.Ctx) error {
	payerID := strings.TrimSpace(c.Params("payerId"))
	if payerID == "" {
		return fiber.NewError(http.StatusBadRequest, "payer id is required")
	}
	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.grants.Grant(c.UserContext(), payerID, req.Limit); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"payer_id": payerID,
		"limit":    req.Limit,
	})
}

// Revoke removes consent for the payer in the path.
func (h *Handler) Revoke(c *fiber.Ctx) error {
	payerID := strings.TrimSpace(c.Params("payerId"))
	if err := h.grants.Revoke(c.UserContext(), payerID); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
