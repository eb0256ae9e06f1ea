package httpx

import (
	"net/http"

	"github.com/ariefcatur/evn-storefront/internal/users"
	"github.com/go-chi/chi/v5"
)

func (a *API) getWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := a.Wishlist.List(r.Context(), currentUser(r).ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", list)
}

func (a *API) addToWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := a.Wishlist.Add(r.Context(), currentUser(r).ID, chi.URLParam(r, "productId"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "added to wishlist", list)
}

func (a *API) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := a.Wishlist.Remove(r.Context(), currentUser(r).ID, chi.URLParam(r, "productId"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "removed from wishlist", list)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in users.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	u, err := a.Users.UpdateProfile(r.Context(), currentUser(r).ID, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "profile updated", u)
}

func (a *API) addAddress(w http.ResponseWriter, r *http.Request) {
	var in users.Address
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	u, err := a.Users.AddAddress(r.Context(), currentUser(r).ID, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "address added", u.Addresses)
}

func (a *API) removeAddress(w http.ResponseWriter, r *http.Request) {
	u, err := a.Users.RemoveAddress(r.Context(), currentUser(r).ID, chi.URLParam(r, "addressId"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "address removed", u.Addresses)
}
