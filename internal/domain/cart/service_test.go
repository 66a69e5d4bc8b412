package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/catalog"
)

type fakeCatalog struct {
	products map[string]*catalog.Product
}

func (f *fakeCatalog) GetProductByHandle(_ context.Context, handle string) (*catalog.Product, error) {
	p, ok := f.products[handle]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func newTestService(t *testing.T) (*Service, *fakeCatalog, *RedisRepository) {
	t.Helper()
	_, client := newTestRedis(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{Cart: config.CartConfig{SessionTTL: time.Hour, DefaultCurrency: "USD"}}
	repo := NewRedisRepository(client, cfg.Cart.SessionTTL)
	products := &fakeCatalog{products: map[string]*catalog.Product{"classic-tee": teeProduct(t)}}

	return NewService(repo, products, cfg, logger), products, repo
}

func guest(id string) Owner { return Owner{SessionID: id} }

func TestService_AddItem(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := guest("s1")

	_, err := svc.AddItem(ctx, owner, &AddToCartRequest{Handle: "classic-tee", VariantID: "V1"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, owner, &AddToCartRequest{Handle: "classic-tee", VariantID: "V3", Quantity: 2})
	require.NoError(t, err)
	resp, err := svc.AddItem(ctx, owner, &AddToCartRequest{Handle: "classic-tee", VariantID: "V1"})
	require.NoError(t, err)

	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "V1", resp.Items[0].VariantID)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, "V3", resp.Items[1].VariantID)
	assert.Equal(t, 4, resp.TotalItemCount)
	require.NotNil(t, resp.TotalPrice)
	assert.Equal(t, "USD 71.00", resp.TotalPrice.String())

	count, err := svc.Count(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestService_AddItemQuickAddUsesDefaultVariant(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.AddItem(context.Background(), guest("s1"), &AddToCartRequest{Handle: "classic-tee"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "V1", resp.Items[0].VariantID)
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestService_AddItemErrors(t *testing.T) {
	svc, products, _ := newTestService(t)
	ctx := context.Background()
	products.products["empty"] = &catalog.Product{ID: "p-empty", Handle: "empty", Title: "Empty"}

	tests := []struct {
		name  string
		owner Owner
		req   AddToCartRequest
		want  error
	}{
		{"unknown product", guest("s1"), AddToCartRequest{Handle: "nope"}, catalog.ErrProductNotFound},
		{"unknown variant", guest("s1"), AddToCartRequest{Handle: "classic-tee", VariantID: "V404"}, catalog.ErrVariantNotFound},
		{"unavailable variant", guest("s1"), AddToCartRequest{Handle: "classic-tee", VariantID: "V2"}, ErrUnavailableVariant},
		{"product without variants", guest("s1"), AddToCartRequest{Handle: "empty"}, catalog.ErrProductUnresolvable},
		{"negative quantity", guest("s1"), AddToCartRequest{Handle: "classic-tee", VariantID: "V1", Quantity: -1}, ErrInvalidQuantity},
		{"no session", Owner{}, AddToCartRequest{Handle: "classic-tee", VariantID: "V1"}, ErrSessionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.AddItem(ctx, tt.owner, &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	resp, err := svc.GetCart(ctx, guest("s1"))
	require.NoError(t, err)
	assert.Empty(t, resp.Items, "failed adds leave the cart untouched")
}

func TestService_SetQuantityAndRemove(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := guest("s1")

	_, err := svc.AddItem(ctx, owner, &AddToCartRequest{Handle: "classic-tee", VariantID: "V1"})
	require.NoError(t, err)

	resp, err := svc.SetQuantity(ctx, owner, "V1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.TotalItemCount)

	_, err = svc.SetQuantity(ctx, owner, "V3", 2)
	assert.ErrorIs(t, err, ErrItemNotFound)

	resp, err = svc.SetQuantity(ctx, owner, "V1", 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	resp, err = svc.RemoveItem(ctx, owner, "V1")
	require.NoError(t, err, "removing an absent line is not an error")
	assert.Zero(t, resp.TotalItemCount)
}

func TestService_Clear(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := guest("s1")

	_, err := svc.AddItem(ctx, owner, &AddToCartRequest{Handle: "classic-tee", VariantID: "V3", Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, owner))

	count, err := svc.Count(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_CartsAreIsolatedPerOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uint(7)

	_, err := svc.AddItem(ctx, guest("a"), &AddToCartRequest{Handle: "classic-tee", VariantID: "V1"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, Owner{UserID: &userID, SessionID: "a"}, &AddToCartRequest{Handle: "classic-tee", VariantID: "V3"})
	require.NoError(t, err)

	a, err := svc.GetCart(ctx, guest("a"))
	require.NoError(t, err)
	b, err := svc.GetCart(ctx, guest("b"))
	require.NoError(t, err)
	u, err := svc.GetCart(ctx, Owner{UserID: &userID})
	require.NoError(t, err)

	assert.Equal(t, 1, a.TotalItemCount)
	assert.Zero(t, b.TotalItemCount)
	require.Len(t, u.Items, 1)
	assert.Equal(t, "V3", u.Items[0].VariantID)
	assert.Empty(t, u.SessionID)
	assert.Equal(t, &userID, u.UserID)
}

func TestService_MergeGuestCart(t *testing.T) {
	svc, _, repo := newTestService(t)
	ctx := context.Background()
	userID := uint(42)
	user := Owner{UserID: &userID}

	_, err := svc.AddItem(ctx, user, &AddToCartRequest{Handle: "classic-tee", VariantID: "V1"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest("g1"), &AddToCartRequest{Handle: "classic-tee", VariantID: "V1", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, guest("g1"), &AddToCartRequest{Handle: "classic-tee", VariantID: "V3"})
	require.NoError(t, err)

	resp, err := svc.MergeGuestCart(ctx, userID, "g1")
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "V1", resp.Items[0].VariantID)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.Equal(t, "V3", resp.Items[1].VariantID)
	assert.Equal(t, 1, resp.Items[1].Quantity)

	guestCart, err := repo.Get(ctx, guest("g1").Key())
	require.NoError(t, err)
	assert.Empty(t, guestCart.Items, "guest cart is removed after merge")

	again, err := svc.MergeGuestCart(ctx, userID, "g1")
	require.NoError(t, err)
	assert.Equal(t, 4, again.TotalItemCount, "merging an empty guest cart changes nothing")
}

func TestService_Validate(t *testing.T) {
	svc, products, _ := newTestService(t)
	ctx := context.Background()
	owner := guest("s1")

	report, err := svc.Validate(ctx, owner)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Issues)

	_, err = svc.AddItem(ctx, owner, &AddToCartRequest{Handle: "classic-tee", VariantID: "V1"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, owner, &AddToCartRequest{Handle: "classic-tee", VariantID: "V3"})
	require.NoError(t, err)

	// catalog moves on after the items were added
	current := teeProduct(t)
	current.Variants[0].Price = money(t, "25.00", "USD")
	current.Variants[2].AvailableForSale = false
	products.products["classic-tee"] = current

	report, err = svc.Validate(ctx, owner)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	require.Len(t, report.Issues, 2)

	assert.Equal(t, "V1", report.Issues[0].VariantID)
	assert.Equal(t, IssuePriceChanged, report.Issues[0].Code)
	require.NotNil(t, report.Issues[0].CurrentPrice)
	assert.Equal(t, "USD 25.00", report.Issues[0].CurrentPrice.String())

	assert.Equal(t, "V3", report.Issues[1].VariantID)
	assert.Equal(t, IssueUnavailable, report.Issues[1].Code)

	// snapshot prices are kept
	assert.Equal(t, "USD 20.00", report.Cart.Items[0].UnitPrice.String())

	current.Variants = current.Variants[1:]
	delete(products.products, "classic-tee")
	report, err = svc.Validate(ctx, owner)
	require.NoError(t, err)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, IssueProductMissing, report.Issues[0].Code)
	assert.Equal(t, IssueProductMissing, report.Issues[1].Code)

	products.products["classic-tee"] = current
	report, err = svc.Validate(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, IssueVariantMissing, report.Issues[0].Code)
}
