package httpx

import (
	"net/http"

	"github.com/ariefcatur/evn-storefront/internal/cart"
	"github.com/go-chi/chi/v5"
)

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := a.Cart.Get(r.Context(), currentUser(r).ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", c)
}

func (a *API) addToCart(w http.ResponseWriter, r *http.Request) {
	var in cart.AddInput
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.Cart.Add(r.Context(), currentUser(r).ID, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "added to cart", c)
}

func (a *API) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.Cart.UpdateItem(r.Context(), currentUser(r).ID, chi.URLParam(r, "itemId"), in.Quantity)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "cart updated", c)
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := a.Cart.RemoveItem(r.Context(), currentUser(r).ID, chi.URLParam(r, "itemId"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "item removed", c)
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	c, err := a.Cart.Clear(r.Context(), currentUser(r).ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "cart cleared", c)
}
