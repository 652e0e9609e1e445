package account

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	TargetID int             `json:"target_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type accountResponse struct {
	ID      int             `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

func toResponse(acc *Account) accountResponse {
	return accountResponse{ID: acc.ID(), Balance: acc.Balance()}
}

// Create opens an account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	if req.InitialBalance.IsNegative() {
		return fiber.NewError(http.StatusBadRequest, "initial balance cannot be negative")
	}
	acc := h.service.Open(req.InitialBalance)
	return c.Status(http.StatusCreated).JSON(toResponse(acc))
}

// List returns all accounts in creation order.
func (h *Handler) List(c *fiber.Ctx) error {
	accounts := h.service.List()
	out := make([]accountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, toResponse(acc))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns a single account.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("accountId")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	acc, err := h.service.Get(id)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(acc))
}

// Delete removes an account. Unknown ids succeed without effect.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("accountId")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	h.service.Close(id)
	return c.SendStatus(http.StatusNoContent)
}

// Deposit credits an account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	id, err := c.ParamsInt("accountId")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acc, err := h.service.Deposit(id, req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(acc))
}

// Withdraw debits an account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	id, err := c.ParamsInt("accountId")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acc, err := h.service.Withdraw(id, req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(acc))
}

// Transfer moves funds to another account.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("accountId")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	from, to, err := h.service.Transfer(id, req.TargetID, req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"from": toResponse(from),
		"to":   toResponse(to),
	})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidTarget),
		errors.Is(err, ErrSameAccountTransfer):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
