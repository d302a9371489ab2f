package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

func TestAddItemScenario(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	productA := &models.Product{ID: uuid.New(), Title: "A", PriceCents: 10}
	productB := uuid.New()
	repo := newMemoryRepo()
	svc := newTestService(t, repo, productA)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, owner, ItemInput{ProductID: productA.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	assertCart(t, c, productA.ID, 2, 10, 20)

	c, err = svc.AddItem(ctx, owner, ItemInput{ProductID: productA.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	assertCart(t, c, productA.ID, 5, 10, 50)

	c, err = svc.UpdateItem(ctx, owner, ItemInput{ProductID: productA.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertCart(t, c, productA.ID, 1, 10, 10)

	c, err = svc.RemoveItem(ctx, owner, productB)
	if err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	assertCart(t, c, productA.ID, 1, 10, 10)

	if got := repo.saves; got != 4 {
		t.Fatalf("expected 4 whole-cart saves, got %d", got)
	}
}

func TestAddItemUnknownProductCreatesNoCart(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	repo := newMemoryRepo()
	svc := newTestService(t, repo)

	_, err := svc.AddItem(context.Background(), owner, ItemInput{ProductID: uuid.New(), Quantity: 1})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if _, ok := repo.carts[owner]; ok {
		t.Fatal("cart must not be created when the product does not exist")
	}
}

func TestAddItemMergesRepeatedAdds(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	a := &models.Product{ID: uuid.New(), PriceCents: 125}
	b := &models.Product{ID: uuid.New(), PriceCents: 999}
	svc := newTestService(t, newMemoryRepo(), a, b)
	ctx := context.Background()

	quantities := []int{1, 4, 2, 7}
	var c *models.Cart
	var err error
	for _, q := range quantities {
		if c, err = svc.AddItem(ctx, owner, ItemInput{ProductID: a.ID, Quantity: q}); err != nil {
			t.Fatalf("add: %v", err)
		}
		if c, err = svc.AddItem(ctx, owner, ItemInput{ProductID: b.ID, Quantity: 1}); err != nil {
			t.Fatalf("add: %v", err)
		}
		assertTotalConsistent(t, c)
	}

	if len(c.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.Items))
	}
	if c.Items[0].ProductID != a.ID || c.Items[0].Quantity != 14 {
		t.Fatalf("expected first line to keep insertion order with qty 14, got %+v", c.Items[0])
	}
	if c.Items[1].Quantity != 4 {
		t.Fatalf("expected second line qty 4, got %+v", c.Items[1])
	}
	if c.TotalPriceCents != 14*125+4*999 {
		t.Fatalf("unexpected total %d", c.TotalPriceCents)
	}
}

func TestAddItemKeepsPriceSnapshot(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p := &models.Product{ID: uuid.New(), PriceCents: 300}
	svc := newTestService(t, newMemoryRepo(), p)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	p.PriceCents = 500
	c, err := svc.UpdateItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertCart(t, c, p.ID, 3, 300, 900)
}

func TestUpdateItemSetsQuantity(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p := &models.Product{ID: uuid.New(), PriceCents: 10}
	svc := newTestService(t, newMemoryRepo(), p)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 2; i++ {
		c, err := svc.UpdateItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 5})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		assertCart(t, c, p.ID, 5, 10, 50)
	}
}

func TestUpdateItemErrors(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p := &models.Product{ID: uuid.New(), PriceCents: 10}
	svc := newTestService(t, newMemoryRepo(), p)
	ctx := context.Background()

	_, err := svc.UpdateItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 1})
	if !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}

	if _, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = svc.UpdateItem(ctx, owner, ItemInput{ProductID: uuid.New(), Quantity: 1})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	_, err = svc.UpdateItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 0})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if typed := pkgerrors.As(err); typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %s", typed.Code())
	}
}

func TestInvalidInputRejectedBeforeLookup(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	owner := uuid.New()

	cases := []ItemInput{
		{ProductID: uuid.Nil, Quantity: 1},
		{ProductID: uuid.New(), Quantity: 0},
		{ProductID: uuid.New(), Quantity: -3},
	}
	for _, in := range cases {
		if _, err := svc.AddItem(ctx, owner, in); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("input %+v: expected ErrInvalidArgument, got %v", in, err)
		}
	}
	if _, err := svc.RemoveItem(ctx, owner, uuid.Nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument on remove, got %v", err)
	}
	if repo.finds != 0 {
		t.Fatalf("expected no storage reads, got %d", repo.finds)
	}
}

func TestRemoveItemRequiresCart(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newMemoryRepo())
	_, err := svc.RemoveItem(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestRemoveItemDropsLine(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	a := &models.Product{ID: uuid.New(), PriceCents: 10}
	b := &models.Product{ID: uuid.New(), PriceCents: 7}
	svc := newTestService(t, newMemoryRepo(), a, b)
	ctx := context.Background()

	for _, p := range []*models.Product{a, b} {
		if _, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 2}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	c, err := svc.RemoveItem(ctx, owner, a.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	assertCart(t, c, b.ID, 2, 7, 14)
}

func TestPersistFailureLeavesStoredCart(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p := &models.Product{ID: uuid.New(), PriceCents: 10}
	repo := newMemoryRepo()
	svc := newTestService(t, repo, p)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	repo.saveErr = errors.New("disk full")

	_, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 3})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
	stored := repo.carts[owner]
	if stored.Items[0].Quantity != 2 || stored.TotalPriceCents != 20 {
		t.Fatalf("stored cart changed after failed save: %+v", stored)
	}
}

func TestAddItemOverflowLeavesStoredCart(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p := &models.Product{ID: uuid.New(), PriceCents: 10}
	repo := newMemoryRepo()
	svc := newTestService(t, repo, p)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: math.MaxInt})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for overflowing total, got %v", err)
	}
	if _, ok := repo.carts[owner]; ok {
		t.Fatal("cart must not be created when the total overflows")
	}

	if _, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: math.MaxInt})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for overflowing merge, got %v", err)
	}
	_, err = svc.UpdateItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: math.MaxInt})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for overflowing update, got %v", err)
	}

	stored := repo.carts[owner]
	if stored.Items[0].Quantity != 2 || stored.TotalPriceCents != 20 {
		t.Fatalf("stored cart changed after rejected mutation: %+v", stored)
	}
	if repo.saves != 1 {
		t.Fatalf("expected a single save, got %d", repo.saves)
	}
}

func TestAddItemCreateRaceIsConflict(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p := &models.Product{ID: uuid.New(), PriceCents: 10}
	repo := newMemoryRepo()
	repo.saveErr = errors.New("UNIQUE constraint failed: carts.owner_id")
	svc := newTestService(t, repo, p)

	_, err := svc.AddItem(context.Background(), owner, ItemInput{ProductID: p.ID, Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if _, ok := repo.carts[owner]; ok {
		t.Fatal("losing create must not store a cart")
	}
}

func TestGetCartResolvesProducts(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	kept := &models.Product{ID: uuid.New(), Title: "Kept", SKU: "K", PriceCents: 150}
	gone := &models.Product{ID: uuid.New(), Title: "Gone", SKU: "G", PriceCents: 50}
	repo := newMemoryRepo()
	lookup := newStubProducts(kept, gone)
	svc, err := NewService(repo, stubTxRunner{}, lookup, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.GetCart(ctx, owner); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}

	for _, p := range []*models.Product{kept, gone} {
		if _, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 1}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	delete(lookup.byID, gone.ID)

	view, err := svc.GetCart(ctx, owner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(view.Items))
	}
	if view.Items[0].Product == nil || view.Items[0].Product.Title != "Kept" {
		t.Fatalf("expected resolved product, got %+v", view.Items[0].Product)
	}
	if view.Items[1].Product != nil {
		t.Fatalf("expected deleted product to resolve to nil, got %+v", view.Items[1].Product)
	}
	if view.TotalPriceCents != 200 || view.TotalPrice != "2.00" {
		t.Fatalf("unexpected total %d %s", view.TotalPriceCents, view.TotalPrice)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	p := &models.Product{ID: uuid.New(), PriceCents: 10}
	svc := newTestService(t, newMemoryRepo(), p)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 4}); err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err := svc.Clear(ctx, owner)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(c.Items) != 0 || c.TotalPriceCents != 0 {
		t.Fatalf("expected empty cart, got %+v", c)
	}
}

func TestMutationsRecordMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := &models.Product{ID: uuid.New(), PriceCents: 10}
	svc, err := NewService(newMemoryRepo(), stubTxRunner{}, newStubProducts(p), metrics.NewCartMetrics(reg))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	owner := uuid.New()

	if _, err := svc.AddItem(ctx, owner, ItemInput{ProductID: p.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, _ = svc.UpdateItem(ctx, owner, ItemInput{ProductID: uuid.New(), Quantity: 1})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	seen := map[string]float64{}
	for _, fam := range families {
		if fam.GetName() != "storefront_cart_mutations_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			seen[labels["op"]+"/"+labels["outcome"]] = m.GetCounter().GetValue()
		}
	}
	if seen["add/ok"] != 1 {
		t.Fatalf("expected one successful add, got %v", seen)
	}
	if seen["update/NOT_FOUND"] != 1 {
		t.Fatalf("expected one failed update, got %v", seen)
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, stubTxRunner{}, newStubProducts(), nil); err == nil {
		t.Fatal("expected error for nil repo")
	}
	if _, err := NewService(newMemoryRepo(), nil, newStubProducts(), nil); err == nil {
		t.Fatal("expected error for nil tx runner")
	}
	if _, err := NewService(newMemoryRepo(), stubTxRunner{}, nil, nil); err == nil {
		t.Fatal("expected error for nil product lookup")
	}
}

func assertCart(t *testing.T, c *models.Cart, productID uuid.UUID, qty int, unit, total int64) {
	t.Helper()
	if len(c.Items) != 1 {
		t.Fatalf("expected 1 line, got %d: %+v", len(c.Items), c.Items)
	}
	item := c.Items[0]
	if item.ProductID != productID || item.Quantity != qty || item.UnitPriceCents != unit {
		t.Fatalf("unexpected line %+v", item)
	}
	if c.TotalPriceCents != total {
		t.Fatalf("expected total %d, got %d", total, c.TotalPriceCents)
	}
	assertTotalConsistent(t, c)
}

func assertTotalConsistent(t *testing.T, c *models.Cart) {
	t.Helper()
	var sum int64
	for _, item := range c.Items {
		sum += int64(item.Quantity) * item.UnitPriceCents
	}
	if sum != c.TotalPriceCents {
		t.Fatalf("total %d does not match lines %d", c.TotalPriceCents, sum)
	}
}

func newTestService(t *testing.T, repo CartRepository, products ...*models.Product) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, newStubProducts(products...), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

// memoryRepo keeps deep copies so the service cannot mutate stored carts.
type memoryRepo struct {
	carts   map[uuid.UUID]*models.Cart
	saveErr error
	saves   int
	finds   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{carts: map[uuid.UUID]*models.Cart{}}
}

func (m *memoryRepo) WithTx(tx *gorm.DB) CartRepository { return m }

func (m *memoryRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	m.finds++
	c, ok := m.carts[ownerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneCart(c), nil
}

func (m *memoryRepo) Save(ctx context.Context, c *models.Cart) (*models.Cart, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.saves++
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.carts[c.OwnerID] = cloneCart(c)
	return c, nil
}

func cloneCart(c *models.Cart) *models.Cart {
	out := *c
	out.Items = append(types.CartLineItems{}, c.Items...)
	return &out
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProducts struct {
	byID map[uuid.UUID]*models.Product
}

func newStubProducts(products ...*models.Product) *stubProducts {
	s := &stubProducts{byID: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		s.byID[p.ID] = p
	}
	return s
}

func (s *stubProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubProducts) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := map[uuid.UUID]models.Product{}
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}
