package httpx

import (
	"net/http"
	"strconv"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func parseProductQuery(r *http.Request) (catalog.ListQuery, error) {
	q := r.URL.Query()
	lq := catalog.ListQuery{
		Category: catalog.Category(q.Get("category")),
		Search:   q.Get("search"),
		Sort:     catalog.SortOrder(q.Get("sort")),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 0),
	}
	var bad []string
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &lq.MinPrice, "maxPrice": &lq.MaxPrice} {
		if v := q.Get(key); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				bad = append(bad, key+" must be a number")
				continue
			}
			*dst = &d
		}
	}
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			bad = append(bad, "featured must be true or false")
		} else {
			lq.Featured = &b
		}
	}
	if len(bad) > 0 {
		return catalog.ListQuery{}, apperr.Validation("invalid query", bad...)
	}
	return lq, nil
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	page, err := a.Catalog.List(r.Context(), q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", page)
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", p)
}

func (a *API) adminListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	q.IncludeInactive = true
	page, err := a.Catalog.List(r.Context(), q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", page)
}

func (a *API) adminGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.Catalog.GetAny(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", p)
}

func (a *API) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Catalog.Create(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "product created", p)
}

func (a *API) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "product updated", p)
}

func (a *API) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "product deactivated", nil)
}
