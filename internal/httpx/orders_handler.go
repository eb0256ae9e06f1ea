package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/orders"
	"github.com/ariefcatur/evn-storefront/internal/redisx"
	"github.com/go-chi/chi/v5"
)

// orderStatusView is what GET /orders/{id}/status returns and what the
// status cache holds.
type orderStatusView struct {
	OrderID       string               `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	UserID        string               `json:"userId"`
	OrderStatus   orders.Status        `json:"orderStatus"`
	PaymentStatus orders.PaymentStatus `json:"paymentStatus"`
	Tracking      *orders.Tracking     `json:"tracking,omitempty"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func statusView(o orders.Order) orderStatusView {
	return orderStatusView{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		OrderStatus:   o.Status,
		PaymentStatus: o.PaymentInfo.Status,
		Tracking:      o.Tracking,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (a *API) cacheStatus(ctx context.Context, o orders.Order) {
	if a.Redis == nil {
		return
	}
	b, _ := json.Marshal(statusView(o))
	_ = a.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, o.ID), b, redisx.TTLStatusCache).Err()
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	user := currentUser(r)

	// Idempotency via Redis: key yang sama -> order yang sama. Key di-claim
	// dulu (SETNX "pending"), baru order dibuat.
	var idemKey string
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" && a.Redis != nil {
		idemKey = fmt.Sprintf(redisx.KeyIdemOrderCreate, user.ID, k)
		prev, err := a.claimIdempotency(ctx, idemKey)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		if prev != "" {
			o, err := a.Orders.Get(ctx, prev, user.ID, false)
			if err != nil {
				a.fail(w, r, err)
				return
			}
			ok(w, http.StatusOK, "order already placed", o)
			return
		}
	}

	o, err := a.Orders.Create(ctx, user.ID, in)
	if err != nil {
		if idemKey != "" {
			// lepas claim supaya retry bisa mencoba lagi
			_ = a.Redis.Del(context.WithoutCancel(ctx), idemKey).Err()
		}
		a.fail(w, r, err)
		return
	}
	if idemKey != "" {
		if err := a.Redis.Set(context.WithoutCancel(ctx), idemKey, o.ID, redisx.TTLIdempotency).Err(); err != nil {
			log.Printf("idempotency: store %s: %v", idemKey, err)
		}
	}
	a.cacheStatus(ctx, o)
	ok(w, http.StatusCreated, "order placed", o)
}

const (
	idemWait = 3 * time.Second
	idemPoll = 50 * time.Millisecond
)

// claimIdempotency returns "" when the caller owns key and must place the
// order, or the id of the order an earlier request placed under it. A
// request still in flight under the same key is waited for up to idemWait,
// then answered with a conflict. Redis failures fall back to no
// idempotency.
func (a *API) claimIdempotency(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, idemWait)
	defer cancel()
	busy := apperr.Conflict("an order with this Idempotency-Key is still being placed")
	for {
		won, err := redisx.ClaimAs(ctx, a.Redis, key, redisx.IdemPending, redisx.TTLIdemPending)
		if err != nil {
			if ctx.Err() != nil {
				return "", busy
			}
			log.Printf("idempotency: claim %s: %v", key, err)
			return "", nil
		}
		if won {
			return "", nil
		}
		// redis.Nil artinya pemilik claim gagal dan sudah Del; claim ulang
		if id, err := a.Redis.Get(ctx, key).Result(); err == nil && id != redisx.IdemPending {
			return id, nil
		}
		select {
		case <-ctx.Done():
			return "", busy
		case <-time.After(idemPoll):
		}
	}
}

func (a *API) listMyOrders(w http.ResponseWriter, r *http.Request) {
	page, err := a.Orders.ListMine(r.Context(), currentUser(r).ID, queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", page)
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	o, err := a.Orders.Get(r.Context(), chi.URLParam(r, "id"), u.ID, u.IsAdmin())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", o)
}

func (a *API) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u := currentUser(r)
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	if a.Redis != nil {
		if s, err := a.Redis.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id)).Bytes(); err == nil {
			var v orderStatusView
			if json.Unmarshal(s, &v) == nil {
				if v.UserID != u.ID && !u.IsAdmin() {
					a.fail(w, r, apperr.Forbidden("not allowed to view this order"))
					return
				}
				ok(w, http.StatusOK, "", v)
				return
			}
		}
	}

	// 2) fallback DB
	o, err := a.Orders.Get(ctx, id, u.ID, u.IsAdmin())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.cacheStatus(ctx, o)
	ok(w, http.StatusOK, "", statusView(o))
}

func (a *API) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason string `json:"reason"`
	}
	// body opsional
	if err := decodeOptionalJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	o, err := a.Orders.Cancel(r.Context(), chi.URLParam(r, "id"), currentUser(r).ID, strings.TrimSpace(in.Reason))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.cacheStatus(r.Context(), o)
	ok(w, http.StatusOK, "order cancelled", o)
}
