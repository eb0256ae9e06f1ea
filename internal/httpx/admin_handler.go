package httpx

import (
	"net/http"

	"github.com/ariefcatur/evn-storefront/internal/orders"
	"github.com/ariefcatur/evn-storefront/internal/users"
	"github.com/go-chi/chi/v5"
)

func (a *API) adminListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := a.Orders.ListAll(r.Context(), orders.ListQuery{
		Status: orders.Status(q.Get("status")),
		Search: q.Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", page)
}

func (a *API) adminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in orders.UpdateStatusInput
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	o, err := a.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.cacheStatus(r.Context(), o)
	ok(w, http.StatusOK, "order status updated", o)
}

func (a *API) adminOrderStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.Reporting.OrderStats(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", st)
}

func (a *API) adminAnalytics(w http.ResponseWriter, r *http.Request) {
	d, err := a.Reporting.Dashboard(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", d)
}

func (a *API) adminCustomers(w http.ResponseWriter, r *http.Request) {
	list, total, err := a.Users.ListCustomers(r.Context(), users.ListQuery{
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", map[string]any{"customers": list, "total": total})
}
