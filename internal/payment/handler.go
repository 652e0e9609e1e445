package payment

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes payment endpoints.
type Handler struct {
	pipeline *Pipeline
}

// NewHandler constructs a payment handler.
func NewHandler(pipeline *Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

type paymentRequest struct {
	PayerID  string          `json:"payer_id"`
	VendorID string          `json:"vendor_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type paymentResponse struct {
	Success bool   `json:"success"`
	Stage   string `json:"stage,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Process runs a payment through the pipeline. Stage failures are reported in
// the body with 422; they are not HTTP errors.
func (h *Handler) Process(c *fiber.Ctx) error {
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	out := h.pipeline.ProcessPayment(c.UserContext(), req.PayerID, req.VendorID, req.Amount)
	status := http.StatusOK
	if !out.Success {
		status = http.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(paymentResponse{
		Success: out.Success,
		Stage:   string(out.Stage),
		Error:   out.ErrorMessage,
	})
}
