package handlers

import (
	"github.com/jmoiron/sqlx"

	"noiressence/internal/assistant"
	"noiressence/internal/checkout"
	"noiressence/internal/config"
	"noiressence/internal/repos"
	"noiressence/internal/services"
)

type Deps struct {
	Sessions *services.SessionStore

	StoreHandler    *StoreHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	ChatHandler     *ChatHandler
	AdminHandler    *AdminHandler
}

// NewDeps wires repos and services. A nil gen disables the assistant and a nil
// sink acknowledges every order locally.
func NewDeps(db *sqlx.DB, cfg config.Config, gen assistant.Generator, sink checkout.Sink) *Deps {
	prodRepo := repos.NewProductRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	contentRepo := repos.NewContentRepo(db)

	if sink == nil {
		sink = checkout.Acknowledge
	}

	sessions := services.NewSessionStore(cfg.SessionCapacity, cfg.SessionTTL)
	catalogSvc := services.NewCatalogService(prodRepo, catRepo)
	cartSvc := services.NewCartService(sessions, catalogSvc)
	checkoutSvc := services.NewCheckoutService(sessions, sink, cfg.OrderSubmitRetries)
	assistantSvc := services.NewAssistantService(gen, cfg.AssistantTimeout)

	return &Deps{
		Sessions:        sessions,
		StoreHandler:    &StoreHandler{Catalog: catalogSvc, Content: contentRepo},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc},
		ChatHandler:     &ChatHandler{Assistant: assistantSvc},
		AdminHandler:    &AdminHandler{Catalog: catalogSvc, Assistant: assistantSvc},
	}
}
