package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/hoard_token/internal/ledger"
)

// Handler exposes token HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a token handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Initialize creates a mint and issues its total supply to the initializer.
func (h *Handler) Initialize(c *fiber.Ctx) error {
	var req initializeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Mint.IsZero() {
		req.Mint = ledger.NewUniquePublicKey()
	}
	res, err := h.service.Initialize(c.UserContext(), InitializeInput{
		Mint:        req.Mint,
		Authority:   req.Authority,
		TotalSupply: req.TotalSupply,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// InitializeMint creates a mint without supply.
func (h *Handler) InitializeMint(c *fiber.Ctx) error {
	var req initializeMintRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Mint.IsZero() {
		req.Mint = ledger.NewUniquePublicKey()
	}
	res, err := h.service.InitializeMint(c.UserContext(), InitializeMintInput{
		Mint:            req.Mint,
		Decimals:        req.Decimals,
		MintAuthority:   req.MintAuthority,
		FreezeAuthority: req.FreezeAuthority,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"mint":           req.Mint,
		"transaction_id": res.TransactionID,
		"completed_at":   res.CompletedAt,
	})
}

// MintTo issues new tokens of the mint in the path.
func (h *Handler) MintTo(c *fiber.Ctx) error {
	mint, err := pathKey(c, "mint")
	if err != nil {
		return err
	}
	var req mintToRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Mint(c.UserContext(), MintInput{
		Mint:        mint,
		Destination: req.Destination,
		Authority:   req.Authority,
		Amount:      req.Amount,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// Burn destroys tokens of the mint in the path.
func (h *Handler) Burn(c *fiber.Ctx) error {
	mint, err := pathKey(c, "mint")
	if err != nil {
		return err
	}
	var req burnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Burn(c.UserContext(), BurnInput{
		Mint:      mint,
		Source:    req.Source,
		Authority: req.Authority,
		Amount:    req.Amount,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// InitializeAccount opens a token account.
func (h *Handler) InitializeAccount(c *fiber.Ctx) error {
	var req initializeAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.InitializeAccount(c.UserContext(), InitializeAccountInput{
		Account: req.Account,
		Mint:    req.Mint,
		Owner:   req.Owner,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// Transfer performs a fee-split transfer.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Transfer(c.UserContext(), TransferInput{
		Source:            req.Source,
		Destination:       req.Destination,
		EcosystemTreasury: req.EcosystemTreasury,
		RewardTreasury:    req.RewardTreasury,
		Authority:         req.Authority,
		Amount:            req.Amount,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// Approve grants a delegate allowance on the account in the path.
func (h *Handler) Approve(c *fiber.Ctx) error {
	source, err := pathKey(c, "account")
	if err != nil {
		return err
	}
	var req approveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Approve(c.UserContext(), ApproveInput{
		Source:   source,
		Delegate: req.Delegate,
		Owner:    req.Owner,
		Amount:   req.Amount,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(res)
}

// Revoke clears the delegate of the account in the path.
func (h *Handler) Revoke(c *fiber.Ctx) error {
	source, err := pathKey(c, "account")
	if err != nil {
		return err
	}
	var req ownerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Revoke(c.UserContext(), RevokeInput{Source: source, Owner: req.Owner})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(res)
}

// SetAuthority reassigns an authority slot. A null new_authority revokes it.
func (h *Handler) SetAuthority(c *fiber.Ctx) error {
	var req setAuthorityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.AuthorityType == nil {
		return fiber.NewError(http.StatusBadRequest, "authority_type is required")
	}
	res, err := h.service.SetAuthority(c.UserContext(), SetAuthorityInput{
		Target:  req.Target,
		Type:    *req.AuthorityType,
		Current: req.CurrentAuthority,
		New:     req.NewAuthority,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(res)
}

// CloseAccount closes the empty account in the path.
func (h *Handler) CloseAccount(c *fiber.Ctx) error {
	account, err := pathKey(c, "account")
	if err != nil {
		return err
	}
	var req closeAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.CloseAccount(c.UserContext(), CloseAccountInput{
		Account:     account,
		Destination: req.Destination,
		Authority:   req.Authority,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(res)
}

// Freeze freezes the account in the path.
func (h *Handler) Freeze(c *fiber.Ctx) error {
	return h.setFrozen(c, h.service.Freeze)
}

// Thaw thaws the account in the path.
func (h *Handler) Thaw(c *fiber.Ctx) error {
	return h.setFrozen(c, h.service.Thaw)
}

func (h *Handler) setFrozen(c *fiber.Ctx, apply func(ctx context.Context, in FreezeInput) (Result, error)) error {
	account, err := pathKey(c, "account")
	if err != nil {
		return err
	}
	var req freezeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := apply(c.UserContext(), FreezeInput{Account: account, Mint: req.Mint, Authority: req.Authority})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(res)
}

// GetAccount returns a token account view.
func (h *Handler) GetAccount(c *fiber.Ctx) error {
	key, err := pathKey(c, "account")
	if err != nil {
		return err
	}
	view, err := h.service.Account(c.UserContext(), key)
	if err != nil {
		return viewError(err)
	}
	return c.JSON(view)
}

// GetMint returns a mint view.
func (h *Handler) GetMint(c *fiber.Ctx) error {
	key, err := pathKey(c, "mint")
	if err != nil {
		return err
	}
	view, err := h.service.MintInfo(c.UserContext(), key)
	if err != nil {
		return viewError(err)
	}
	return c.JSON(view)
}

// Quote returns the fee split for ?amount=.
func (h *Handler) Quote(c *fiber.Ctx) error {
	amount, err := strconv.ParseUint(c.Query("amount"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "amount must be an unsigned integer")
	}
	split, err := h.service.Quote(amount)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(quoteResponse{
		Amount:       amount,
		NetAmount:    split.Net,
		EcosystemFee: split.EcosystemFee,
		RewardFee:    split.RewardFee,
		Fee:          split.Fee(),
	})
}

func pathKey(c *fiber.Ctx, name string) (ledger.PublicKey, error) {
	key, err := ledger.ParsePublicKey(c.Params(name))
	if err != nil {
		return ledger.PublicKey{}, fiber.NewError(http.StatusBadRequest, fmt.Sprintf("invalid %s: %v", name, err))
	}
	return key, nil
}

func viewError(err error) error {
	if errors.Is(err, ledger.ErrUninitializedAccount) {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return toHTTPError(err)
}

// toHTTPError maps the error taxonomy to HTTP statuses. Specific causes win over
// ErrTransferFailed.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInsufficientBalance):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAmountOverflow), errors.Is(err, ErrSupplyOverflow):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidAccountType), errors.Is(err, ErrInvalidAuthorityType), errors.Is(err, ErrMintMismatch):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAuthorityAlreadyRevoked), errors.Is(err, ErrAccountNotEmpty),
		errors.Is(err, ErrAccountFrozen), errors.Is(err, ErrAlreadyInitialized), errors.Is(err, ErrInvalidAccountState):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrTransferFailed):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
