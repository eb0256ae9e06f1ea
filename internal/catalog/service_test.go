package catalog

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/shopspring/decimal"
)

type memStore struct {
	byID map[string]Product
}

func newMemStore() *memStore { return &memStore{byID: map[string]Product{}} }

func (m *memStore) List(_ context.Context, q ListQuery) ([]Product, int, error) {
	var out []Product
	for _, p := range m.byID {
		if !q.IncludeInactive && !p.IsActive {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := len(out)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (m *memStore) Get(_ context.Context, id string) (Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *memStore) Insert(_ context.Context, p Product) error { m.byID[p.ID] = p; return nil }

func (m *memStore) Update(_ context.Context, p Product) error {
	if _, ok := m.byID[p.ID]; !ok {
		return ErrNotFound
	}
	m.byID[p.ID] = p
	return nil
}

func (m *memStore) SetActive(_ context.Context, id string, active bool) error {
	p, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.IsActive = active
	m.byID[id] = p
	return nil
}

func teeInput() ProductInput {
	return ProductInput{
		Name:     "Classic Tee",
		Price:    decimal.NewFromInt(1000),
		Category: CategoryTShirts,
		Sizes:    []SizeStock{{Size: SizeM, Stock: 5}, {Size: SizeL, Stock: 3}},
		Colors:   []string{"black"},
		Images:   []string{"tee.jpg"},
	}
}

func newService() (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store)
	svc.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, store
}

func TestCreateComputesTotalStock(t *testing.T) {
	svc, _ := newService()
	p, err := svc.Create(context.Background(), teeInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.TotalStock != 8 {
		t.Fatalf("TotalStock = %d, want 8", p.TotalStock)
	}
	if !p.IsActive {
		t.Fatal("new products must be active")
	}
}

func TestUpdateRecomputesTotalStockAndKeepsSoldCount(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, teeInput())

	stored := store.byID[p.ID]
	stored.Sizes[0].SoldCount = 7
	store.byID[p.ID] = stored

	in := teeInput()
	in.Sizes = []SizeStock{{Size: SizeM, Stock: 1}}
	got, err := svc.Update(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.TotalStock != 1 {
		t.Fatalf("TotalStock = %d, want 1", got.TotalStock)
	}
	if got.Sizes[0].SoldCount != 7 {
		t.Fatalf("SoldCount lost on update: %+v", got.Sizes[0])
	}
}

func TestValidateEnumeratesFailures(t *testing.T) {
	sale := decimal.NewFromInt(1200)
	in := ProductInput{
		Name:      "X",
		Price:     decimal.NewFromInt(-1),
		SalePrice: &sale,
		Category:  "hoodies",
		Sizes:     []SizeStock{{Size: "XXXL", Stock: -2}},
	}
	err := in.Validate()
	var ae *apperr.Error
	if !asAppErr(err, &ae) || ae.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	joined := strings.Join(ae.Fields, "|")
	for _, want := range []string{"name", "price must not be negative", "salePrice must be lower", "category", "sizes[0].size", "sizes[0].stock"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, ae.Fields)
		}
	}
}

func TestGetHidesInactiveAndMalformedIDs(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, teeInput())

	if _, err := svc.Get(ctx, "not-a-uuid"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("malformed id: got %v", err)
	}
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("inactive product should be 404, got %v", err)
	}
	if got, err := svc.GetAny(ctx, p.ID); err != nil || got.IsActive {
		t.Fatalf("GetAny should return the soft-deleted product, got %+v %v", got, err)
	}
}

func TestListPaginatesAndRejectsBadSort(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	for _, name := range []string{"Alpha Tee", "Beta Tee", "Gamma Tee"} {
		in := teeInput()
		in.Name = name
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := svc.List(ctx, ListQuery{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Products) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	if _, err := svc.List(ctx, ListQuery{Sort: "cheapest"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("bad sort should be a validation error, got %v", err)
	}
}

func TestEffectivePrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(1000)}
	if !p.EffectivePrice().Equal(decimal.NewFromInt(1000)) {
		t.Fatal("without sale price the list price applies")
	}
	sale := decimal.NewFromInt(799)
	p.SalePrice = &sale
	if !p.EffectivePrice().Equal(sale) {
		t.Fatal("sale price should win")
	}
}

func TestParseSeed(t *testing.T) {
	src := `
products:
  - name: Classic Tee
    price: "1000"
    salePrice: "899"
    category: t-shirts
    sizes:
      - {size: M, stock: 5}
    colors: [black]
    featured: true
`
	inputs, err := ParseSeed(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	if len(inputs) != 1 || inputs[0].SalePrice == nil || !inputs[0].IsFeatured {
		t.Fatalf("unexpected inputs %+v", inputs)
	}

	bad := strings.Replace(src, `salePrice: "899"`, `salePrice: "1500"`, 1)
	if _, err := ParseSeed(strings.NewReader(bad)); err == nil {
		t.Fatal("sale price above price should fail seed validation")
	}
}

func asAppErr(err error, target **apperr.Error) bool {
	e, ok := err.(*apperr.Error)
	if ok {
		*target = e
	}
	return ok
}
