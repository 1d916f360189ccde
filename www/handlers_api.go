package www

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nekkaida/Cardose-sub003/model"
	"github.com/nekkaida/Cardose-sub003/store"
)

// --- Orders ---

func (h *Handlers) apiListOrders(w http.ResponseWriter, r *http.Request) {
	f := store.OrderFilter{
		Status:     r.URL.Query().Get("status"),
		CustomerID: r.URL.Query().Get("customer_id"),
		BoxType:    r.URL.Query().Get("box_type"),
	}
	orders, origin, err := h.svc.Orders.GetAll(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: orders})
}

func (h *Handlers) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var o model.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Orders.Create(r.Context(), o)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, created)
}

func (h *Handlers) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	o, origin, err := h.svc.Orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: o})
}

func (h *Handlers) apiUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var patch model.OrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Orders.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, updated)
}

func (h *Handlers) apiDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, updated)
}

func (h *Handlers) apiOrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.Orders.History(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, history)
}

func (h *Handlers) apiGenerateTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.generator.GenerateForOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, tasks)
}

// --- Customers ---

func (h *Handlers) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	f := store.CustomerFilter{Name: r.URL.Query().Get("name")}
	customers, origin, err := h.svc.Customers.GetAll(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: customers})
}

func (h *Handlers) apiCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c model.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Customers.Create(r.Context(), c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, created)
}

func (h *Handlers) apiGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, origin, err := h.svc.Customers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: c})
}

func (h *Handlers) apiUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var patch model.CustomerPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Customers.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, updated)
}

func (h *Handlers) apiDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// --- Inventory ---

func (h *Handlers) apiListInventory(w http.ResponseWriter, r *http.Request) {
	f := store.InventoryFilter{
		Material:     r.URL.Query().Get("material"),
		BelowReorder: r.URL.Query().Get("below_reorder") == "true",
	}
	items, origin, err := h.svc.Inventory.GetAll(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: items})
}

func (h *Handlers) apiCreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var it model.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Inventory.Create(r.Context(), it)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, created)
}

func (h *Handlers) apiGetInventoryItem(w http.ResponseWriter, r *http.Request) {
	it, origin, err := h.svc.Inventory.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: it})
}

func (h *Handlers) apiUpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var patch model.InventoryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Inventory.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, updated)
}

func (h *Handlers) apiDeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Inventory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiAdjustInventory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Inventory.AdjustQuantity(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, updated)
}

// --- Production tasks ---

func (h *Handlers) apiListTasks(w http.ResponseWriter, r *http.Request) {
	f := store.ProductionFilter{
		OrderID: r.URL.Query().Get("order_id"),
		Status:  r.URL.Query().Get("status"),
		Stage:   r.URL.Query().Get("stage"),
	}
	tasks, origin, err := h.svc.Production.GetAll(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: tasks})
}

func (h *Handlers) apiCreateTask(w http.ResponseWriter, r *http.Request) {
	var t model.ProductionTask
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Production.Create(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, created)
}

func (h *Handlers) apiGetTask(w http.ResponseWriter, r *http.Request) {
	t, origin, err := h.svc.Production.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: t})
}

func (h *Handlers) apiUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch model.ProductionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Production.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, updated)
}

func (h *Handlers) apiDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Production.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiCompleteTask(w http.ResponseWriter, r *http.Request) {
	updated, err := h.svc.Production.CompleteTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, updated)
}

// --- Communications ---

func (h *Handlers) apiListCommunications(w http.ResponseWriter, r *http.Request) {
	f := store.CommunicationFilter{
		CustomerID: r.URL.Query().Get("customer_id"),
		OrderID:    r.URL.Query().Get("order_id"),
		Channel:    r.URL.Query().Get("channel"),
	}
	comms, origin, err := h.svc.Communications.GetAll(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: comms})
}

func (h *Handlers) apiCreateCommunication(w http.ResponseWriter, r *http.Request) {
	var c model.Communication
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Communications.Create(r.Context(), c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, created)
}

func (h *Handlers) apiGetCommunication(w http.ResponseWriter, r *http.Request) {
	c, origin, err := h.svc.Communications.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: c})
}

func (h *Handlers) apiUpdateCommunication(w http.ResponseWriter, r *http.Request) {
	var patch model.CommunicationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Communications.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, updated)
}

func (h *Handlers) apiDeleteCommunication(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Communications.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// --- Invoices ---

func (h *Handlers) apiListInvoices(w http.ResponseWriter, r *http.Request) {
	f := store.InvoiceFilter{
		OrderID:    r.URL.Query().Get("order_id"),
		CustomerID: r.URL.Query().Get("customer_id"),
		Status:     r.URL.Query().Get("status"),
	}
	invoices, origin, err := h.svc.Invoices.GetAll(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: invoices})
}

func (h *Handlers) apiCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv model.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Invoices.Create(r.Context(), inv)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, created)
}

func (h *Handlers) apiGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, origin, err := h.svc.Invoices.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, listResult{Origin: origin.String(), Data: inv})
}

func (h *Handlers) apiUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var patch model.InvoicePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Invoices.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, updated)
}

func (h *Handlers) apiDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Invoices.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
