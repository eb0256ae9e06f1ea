package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/cart"
	"github.com/ariefcatur/evn-storefront/internal/catalog"
	kafkax "github.com/ariefcatur/evn-storefront/internal/kafka"
	"github.com/ariefcatur/evn-storefront/internal/validate"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// InsufficientStockError is returned by Store.Place when the conditional
// decrement finds less stock than validated (a concurrent order won).
type InsufficientStockError struct {
	ProductID string
	Size      catalog.Size
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s size %s", e.ProductID, e.Size)
}

type Store interface {
	// Place writes the order, decrements stock and (when clearCart) empties
	// the user's cart in one transaction. It assigns o.OrderNumber.
	Place(ctx context.Context, o *Order, clearCart bool) error
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, q ListQuery) ([]Order, int, error)
	// SaveTransition persists o only if its stored status still equals
	// ch.From, restoring stock when ch.Restock is set.
	SaveTransition(ctx context.Context, o Order, ch Change) error
}

type Carts interface {
	Get(ctx context.Context, userID string) (cart.Cart, error)
}

type Products interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) bool
}

type Service struct {
	Store       Store
	Carts       Carts
	Products    Products
	Events      Publisher
	ServiceName string
	CODPincodes map[string]bool
	Now         func() time.Time
}

func NewService(store Store, carts Carts, products Products, events Publisher, serviceName string, codPincodes []string) *Service {
	pins := make(map[string]bool, len(codPincodes))
	for _, p := range codPincodes {
		pins[p] = true
	}
	return &Service{
		Store:       store,
		Carts:       carts,
		Products:    products,
		Events:      events,
		ServiceName: serviceName,
		CODPincodes: pins,
		Now:         time.Now,
	}
}

type CreateInput struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" validate:"required"`
	Items           []Line          `json:"items" validate:"omitempty,dive"`
}

func (in CreateInput) validate() error {
	msgs := validate.Struct(in)
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		msgs = append(msgs, "paymentMethod must be one of [card upi cod wallet online]")
	}
	if len(msgs) > 0 {
		return apperr.Validation("validation failed", msgs...)
	}
	return nil
}

// Create validates every line against live stock before writing anything,
// then persists the order with its stock decrements in one step.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Order, error) {
	if err := in.validate(); err != nil {
		return Order{}, err
	}
	if in.PaymentMethod == PaymentCOD && !s.CODPincodes[in.ShippingAddress.ZipCode] {
		return Order{}, apperr.Business("cash on delivery is not available for pincode %s", in.ShippingAddress.ZipCode)
	}

	src := SourceFor(userID, in.Items)
	lines, err := s.resolve(ctx, src)
	if err != nil {
		return Order{}, err
	}
	products, err := s.loadProducts(ctx, lines)
	if err != nil {
		return Order{}, err
	}
	items, pricing, err := Build(lines, products)
	if err != nil {
		return Order{}, err
	}

	now := s.Now().UTC()
	o := Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentInfo:     PaymentInfo{Method: in.PaymentMethod, Status: PaymentPending},
		Status:          StatusPending,
		StatusHistory:   []HistoryEntry{{Status: StatusPending, Note: "Order placed", At: now}},
		Pricing:         pricing,
		Source:          src.Kind(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.Store.Place(ctx, &o, src.Kind() == SourceCart)
	var short *InsufficientStockError
	if errors.As(err, &short) {
		name := short.ProductID
		if p, ok := products[short.ProductID]; ok {
			name = p.Name
		}
		return Order{}, apperr.Business("insufficient stock for %s (size %s)", name, short.Size)
	}
	if err != nil {
		return Order{}, apperr.Internal("place order", err)
	}

	s.publishPlaced(ctx, o)
	return o, nil
}

func (s *Service) resolve(ctx context.Context, src Source) ([]Line, error) {
	switch v := src.(type) {
	case ItemsSource:
		return v.Lines, nil
	case CartSource:
		c, err := s.Carts.Get(ctx, v.UserID)
		if err != nil {
			return nil, apperr.Internal("load cart", err)
		}
		if c.Empty() {
			return nil, apperr.Business("cart is empty")
		}
		lines := make([]Line, 0, len(c.Items))
		for _, it := range c.Items {
			lines = append(lines, Line{
				ProductID: it.ProductID,
				Size:      it.Size,
				Color:     it.Color,
				Quantity:  it.Quantity,
				Name:      it.Name,
			})
		}
		return lines, nil
	}
	return nil, apperr.Internal("resolve order source", fmt.Errorf("unknown source %T", src))
}

// loadProducts re-fetches every product; missing ones are simply absent from
// the map and rejected by Build.
func (s *Service) loadProducts(ctx context.Context, lines []Line) (map[string]catalog.Product, error) {
	out := make(map[string]catalog.Product, len(lines))
	for _, l := range lines {
		if _, done := out[l.ProductID]; done {
			continue
		}
		if _, err := uuid.Parse(l.ProductID); err != nil {
			continue
		}
		p, err := s.Products.Get(ctx, l.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperr.Internal("load product", err)
		}
		out[l.ProductID] = p
	}
	return out, nil
}

// Get returns the order to its owner or to an admin.
func (s *Service) Get(ctx context.Context, id, requesterID string, isAdmin bool) (Order, error) {
	o, err := s.get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !isAdmin && o.UserID != requesterID {
		return Order{}, apperr.Forbidden("not allowed to view this order")
	}
	return o, nil
}

func (s *Service) get(ctx context.Context, id string) (Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, apperr.NotFound("order not found")
	}
	o, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Order{}, apperr.NotFound("order not found")
	}
	if err != nil {
		return Order{}, apperr.Internal("get order", err)
	}
	return o, nil
}

func (s *Service) ListMine(ctx context.Context, userID string, page, limit int) (Page, error) {
	return s.list(ctx, ListQuery{UserID: userID, Page: page, Limit: limit})
}

func (s *Service) ListAll(ctx context.Context, q ListQuery) (Page, error) {
	if q.Status != "" && !q.Status.Valid() {
		return Page{}, apperr.Validation("invalid query", "status is not a known order status")
	}
	return s.list(ctx, q)
}

func (s *Service) list(ctx context.Context, q ListQuery) (Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}
	out, total, err := s.Store.List(ctx, q)
	if err != nil {
		return Page{}, apperr.Internal("list orders", err)
	}
	if out == nil {
		out = []Order{}
	}
	return Page{Orders: out, Total: total, Page: q.Page, Limit: q.Limit, TotalPages: (total + q.Limit - 1) / q.Limit}, nil
}

// Cancel is the customer path: owner only, and only before processing.
func (s *Service) Cancel(ctx context.Context, id, userID, reason string) (Order, error) {
	o, err := s.get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, apperr.Forbidden("not allowed to cancel this order")
	}
	if !o.Status.Cancellable() {
		return Order{}, apperr.Business("order cannot be cancelled once it is %s", o.Status)
	}
	note := "Cancelled by customer"
	if reason != "" {
		note += ": " + reason
	}
	return s.transition(ctx, o, StatusCancelled, note, nil)
}

type UpdateStatusInput struct {
	Status   Status    `json:"status" validate:"required"`
	Note     string    `json:"note" validate:"max=500"`
	Tracking *Tracking `json:"tracking,omitempty"`
}

// UpdateStatus is the admin path; no ownership check, transition table
// still applies.
func (s *Service) UpdateStatus(ctx context.Context, id string, in UpdateStatusInput) (Order, error) {
	if msgs := validate.Struct(in); msgs != nil {
		return Order{}, apperr.Validation("validation failed", msgs...)
	}
	o, err := s.get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	return s.transition(ctx, o, in.Status, in.Note, in.Tracking)
}

func (s *Service) transition(ctx context.Context, o Order, to Status, note string, tracking *Tracking) (Order, error) {
	ch, err := o.Apply(to, note, s.Now().UTC())
	if err != nil {
		return Order{}, err
	}
	if tracking != nil {
		o.Tracking = tracking
	}
	if err := s.Store.SaveTransition(ctx, o, ch); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return Order{}, apperr.Business("order was updated by someone else, reload and retry")
		}
		return Order{}, apperr.Internal("save order status", err)
	}
	s.publishStatusChanged(ctx, o, ch, note)
	return o, nil
}

func (s *Service) publishPlaced(ctx context.Context, o Order) {
	s.publish(ctx, o.ID, EventOrderPlaced, OrderPlacedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Customer:    Customer{Email: o.ShippingAddress.Email, Name: o.ShippingAddress.Name},
		Items:       o.Items,
		Pricing:     o.Pricing,
		Payment:     o.PaymentInfo.Method,
		Total:       o.Pricing.Total,
	})
}

func (s *Service) publishStatusChanged(ctx context.Context, o Order, ch Change, note string) {
	s.publish(ctx, o.ID, EventOrderStatusChanged, OrderStatusChangedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Customer:    Customer{Email: o.ShippingAddress.Email, Name: o.ShippingAddress.Name},
		From:        ch.From,
		To:          ch.To,
		Note:        note,
		Tracking:    o.Tracking,
	})
}

// publish is fire-and-forget: the order is already committed, a lost event
// only means a lost email.
func (s *Service) publish(ctx context.Context, orderID, eventType string, payload any) {
	if s.Events == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	if !s.Events.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev), kafkax.EventHeaders(eventType, 1)...) {
		log.Printf("orders: dropped %s event for order %s", eventType, orderID)
	}
}
