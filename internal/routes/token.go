package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/hoard_token/internal/token"
)

// RegisterTokenRoutes wires mint, account, transfer and authority endpoints.
func RegisterTokenRoutes(r fiber.Router, h *token.Handler) {
	r.Post("/mints/initialize", h.Initialize)
	r.Post("/mints", h.InitializeMint)
	r.Get("/mints/:mint", h.GetMint)
	r.Post("/mints/:mint/mint-to", h.MintTo)
	r.Post("/mints/:mint/burn", h.Burn)

	r.Post("/accounts", h.InitializeAccount)
	r.Get("/accounts/:account", h.GetAccount)
	r.Post("/accounts/:account/approve", h.Approve)
	r.Post("/accounts/:account/revoke", h.Revoke)
	r.Post("/accounts/:account/close", h.CloseAccount)
	r.Post("/accounts/:account/freeze", h.Freeze)
	r.Post("/accounts/:account/thaw", h.Thaw)

	r.Post("/transfers", h.Transfer)
	r.Post("/authorities", h.SetAuthority)
	r.Get("/fees/quote", h.Quote)
}
