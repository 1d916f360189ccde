package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nekkaida/Cardose-sub003/production"
	"github.com/nekkaida/Cardose-sub003/service"
	"github.com/nekkaida/Cardose-sub003/store"
	"github.com/nekkaida/Cardose-sub003/syncer"
)

// Services bundles the per-entity services the handlers dispatch to.
type Services struct {
	Orders         *service.OrderService
	Customers      *service.CustomerService
	Inventory      *service.InventoryService
	Production     *service.ProductionService
	Communications *service.CommunicationService
	Invoices       *service.InvoiceService
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db        *store.DB
	svc       Services
	sync      *syncer.Synchronizer
	generator *production.Generator
	sessions  *sessionStore
}

// NewRouter creates the chi router for the local workshop API.
func NewRouter(db *store.DB, svc Services, sync *syncer.Synchronizer, gen *production.Generator, sessionSecret string) http.Handler {
	h := &Handlers{
		db:        db,
		svc:       svc,
		sync:      sync,
		generator: gen,
		sessions:  newSessionStore(sessionSecret),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Auth
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/auth/status", h.handleAuthStatus)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authMiddleware)

		// Orders
		r.Get("/orders", h.apiListOrders)
		r.Post("/orders", h.apiCreateOrder)
		r.Get("/orders/{id}", h.apiGetOrder)
		r.Put("/orders/{id}", h.apiUpdateOrder)
		r.Delete("/orders/{id}", h.apiDeleteOrder)
		r.Post("/orders/{id}/status", h.apiUpdateOrderStatus)
		r.Get("/orders/{id}/history", h.apiOrderHistory)
		r.Post("/orders/{id}/generate-tasks", h.apiGenerateTasks)

		// Customers
		r.Get("/customers", h.apiListCustomers)
		r.Post("/customers", h.apiCreateCustomer)
		r.Get("/customers/{id}", h.apiGetCustomer)
		r.Put("/customers/{id}", h.apiUpdateCustomer)
		r.Delete("/customers/{id}", h.apiDeleteCustomer)

		// Inventory
		r.Get("/inventory", h.apiListInventory)
		r.Post("/inventory", h.apiCreateInventoryItem)
		r.Get("/inventory/{id}", h.apiGetInventoryItem)
		r.Put("/inventory/{id}", h.apiUpdateInventoryItem)
		r.Delete("/inventory/{id}", h.apiDeleteInventoryItem)
		r.Post("/inventory/{id}/adjust", h.apiAdjustInventory)

		// Production tasks
		r.Get("/production", h.apiListTasks)
		r.Post("/production", h.apiCreateTask)
		r.Get("/production/{id}", h.apiGetTask)
		r.Put("/production/{id}", h.apiUpdateTask)
		r.Delete("/production/{id}", h.apiDeleteTask)
		r.Post("/production/{id}/complete", h.apiCompleteTask)

		// Communications
		r.Get("/communications", h.apiListCommunications)
		r.Post("/communications", h.apiCreateCommunication)
		r.Get("/communications/{id}", h.apiGetCommunication)
		r.Put("/communications/{id}", h.apiUpdateCommunication)
		r.Delete("/communications/{id}", h.apiDeleteCommunication)

		// Invoices
		r.Get("/invoices", h.apiListInvoices)
		r.Post("/invoices", h.apiCreateInvoice)
		r.Get("/invoices/{id}", h.apiGetInvoice)
		r.Put("/invoices/{id}", h.apiUpdateInvoice)
		r.Delete("/invoices/{id}", h.apiDeleteInvoice)

		// Sync
		r.Get("/sync/status", h.apiSyncStatus)
		r.Get("/sync/pending", h.apiSyncPending)
		r.Get("/sync/failed", h.apiSyncFailed)
		r.Post("/sync/drain", h.apiSyncDrain)

		// Account
		r.Post("/password", h.apiChangePassword)
	})

	return r
}

func (h *Handlers) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := h.sessions.getUser(r)
		if !ok || username == "" {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
