package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aditya2073/agrisample/internal/apierr"
	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/client"
	marketHandler "github.com/Aditya2073/agrisample/internal/handler/http"
	"github.com/Aditya2073/agrisample/internal/identity"
	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/Aditya2073/agrisample/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	url   string
	store *memory.Store
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	store := memory.New()
	router := marketHandler.NewRouter(marketHandler.Deps{
		Auth:     auth.NewService(store.Accounts(), auth.NewTokenManager("test-secret", time.Hour)),
		Profiles: profile.NewService(store.Profiles()),
		Produce:  produce.NewService(store.Produce()),
		Orders:   order.NewEngine(store.Orders()),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &backend{url: srv.URL, store: store}
}

func (b *backend) newClient(t *testing.T) (*client.Client, *identity.MemoryStorage) {
	t.Helper()
	storage := identity.NewMemoryStorage()
	return client.New(b.url, storage, client.WithHTTPClient(&http.Client{Timeout: 5 * time.Second})), storage
}

func signUp(t *testing.T, c *client.Client, name string, role profile.Role) *profile.Profile {
	t.Helper()
	p, err := c.SignUp(context.Background(), auth.SignUpInput{
		Email:    name + "@example.com",
		Password: "secret123",
		Name:     name,
		Role:     role,
	})
	require.NoError(t, err)
	return p
}

func TestClient_SessionLifecycle(t *testing.T) {
	b := newBackend(t)
	c, storage := b.newClient(t)
	ctx := context.Background()

	events, cancel := c.Subscribe()
	defer cancel()

	sess, err := c.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess, "no stored token means no session")

	p := signUp(t, c, "asha", profile.RoleBuyer)
	ev := <-events
	assert.Equal(t, identity.EventSignedIn, ev.Kind)
	assert.Equal(t, p.ID, ev.UserID)

	_, err = storage.Get(ctx, client.SessionKey)
	require.NoError(t, err, "token is kept under its own key")

	sess, err = c.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, p.ID, sess.UserID)

	fetched, err := c.FetchProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha", fetched.Name)

	require.NoError(t, c.SignOut(ctx))
	ev = <-events
	assert.Equal(t, identity.EventSignedOut, ev.Kind)
	_, err = storage.Get(ctx, client.SessionKey)
	assert.ErrorIs(t, err, identity.ErrNotFound)

	sess, err = c.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
	require.NoError(t, c.SignOut(ctx), "signing out twice is a no-op")
}

func TestClient_RevokedTokenIsDropped(t *testing.T) {
	b := newBackend(t)
	c, storage := b.newClient(t)
	ctx := context.Background()
	signUp(t, c, "asha", profile.RoleBuyer)

	// another device holding the same token signs out
	raw, err := storage.Get(ctx, client.SessionKey)
	require.NoError(t, err)
	other, otherStorage := b.newClient(t)
	require.NoError(t, otherStorage.Set(ctx, client.SessionKey, raw))
	require.NoError(t, other.SignOut(ctx))

	sess, err := c.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
	_, err = storage.Get(ctx, client.SessionKey)
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestClient_TypedErrors(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	farmerClient, _ := b.newClient(t)
	buyerClient, _ := b.newClient(t)
	signUp(t, farmerClient, "ravi", profile.RoleFarmer)
	signUp(t, buyerClient, "meera", profile.RoleBuyer)

	_, err := buyerClient.SignIn(ctx, "meera@example.com", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	l, err := farmerClient.AddListing(ctx, produce.NewListing{Name: "Beans", Quantity: 2, Unit: "kg", Price: decimal.NewFromInt(3)})
	require.NoError(t, err)

	_, err = buyerClient.AddListing(ctx, produce.NewListing{Name: "Beans", Quantity: 2, Unit: "kg", Price: decimal.NewFromInt(3)})
	assert.ErrorIs(t, err, produce.ErrNotFarmer)

	_, err = buyerClient.PlaceOrder(ctx, l.ID, 3)
	assert.ErrorIs(t, err, order.ErrInsufficientStock)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)

	o, err := buyerClient.PlaceOrder(ctx, l.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "6.00", o.TotalPrice.StringFixed(2))

	_, err = buyerClient.PlaceOrder(ctx, l.ID, 1)
	assert.ErrorIs(t, err, order.ErrNoLongerAvailable)

	_, err = buyerClient.SetOrderStatus(ctx, o.ID, order.StatusAccepted)
	assert.ErrorIs(t, err, order.ErrNotPermitted)

	accepted, err := farmerClient.SetOrderStatus(ctx, o.ID, order.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, order.StatusAccepted, accepted.Status)

	// both units already left the listing when the order was placed
	_, err = farmerClient.SetOrderStatus(ctx, o.ID, order.StatusCompleted)
	assert.ErrorIs(t, err, order.ErrInsufficientStock)
}

func TestClient_MarketViews(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	farmerClient, _ := b.newClient(t)
	buyerClient, _ := b.newClient(t)
	signUp(t, farmerClient, "ravi", profile.RoleFarmer)
	signUp(t, buyerClient, "meera", profile.RoleBuyer)

	l, err := farmerClient.AddListing(ctx, produce.NewListing{Name: "Rice", Quantity: 100, Unit: "kg", Price: decimal.RequireFromString("1.10")})
	require.NoError(t, err)
	_, err = farmerClient.AddListing(ctx, produce.NewListing{Name: "Wheat", Quantity: 40, Unit: "kg", Price: decimal.RequireFromString("0.90")})
	require.NoError(t, err)

	catalog := produce.NewCatalog(buyerClient)
	require.NoError(t, catalog.Load(ctx))
	cheapest := catalog.View("", produce.SortPriceAscending)
	require.Len(t, cheapest, 2)
	assert.Equal(t, "Wheat", cheapest[0].Name)

	got, err := buyerClient.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rice", got.Name)

	o, err := buyerClient.PlaceOrder(ctx, l.ID, 10)
	require.NoError(t, err)

	fetched, err := farmerClient.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, fetched.ID)

	incoming, err := farmerClient.IncomingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	require.NotNil(t, incoming[0].Buyer)
	assert.Equal(t, "meera", incoming[0].Buyer.Name)

	mine, err := buyerClient.MyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	listings, err := farmerClient.MyListings(ctx)
	require.NoError(t, err)
	assert.Len(t, listings, 2)

	dash, err := farmerClient.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "farmer", dash.Role)
	require.NotNil(t, dash.Sales)
	assert.Equal(t, 2, dash.Sales.ActiveListings)
	assert.Equal(t, 1, dash.Sales.PendingOrders)

	dash, err = buyerClient.Dashboard(ctx)
	require.NoError(t, err)
	require.NotNil(t, dash.Purchases)
	assert.Equal(t, "11.00", dash.Purchases.TotalSpent.StringFixed(2))

	_, err = farmerClient.Chat(ctx, nil, "hello")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status, "assistant routes are absent without a generator")
}

func TestClient_DrivesIdentityCache(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	c, storage := b.newClient(t)
	p := signUp(t, c, "lakshmi", profile.RoleBuyer)

	cache := identity.New(ctx, c, storage)
	cache.Initialize(ctx)
	require.True(t, cache.IsAuthenticated())
	assert.Equal(t, p.ID, cache.User().ID)

	// a restarted client rehydrates provisionally and revalidates
	restarted := identity.New(ctx, client.New(b.url, storage), storage)
	assert.False(t, restarted.IsAuthenticated())
	require.NotNil(t, restarted.User())
	restarted.Initialize(ctx)
	assert.True(t, restarted.IsAuthenticated())

	// profile removed behind the session's back: the cache forces a sign-out
	b.store.Profiles().Delete(p.ID)
	cache.Initialize(ctx)
	assert.False(t, cache.IsAuthenticated())
	_, err := storage.Get(ctx, client.SessionKey)
	assert.ErrorIs(t, err, identity.ErrNotFound, "forced sign-out forgets the token")
}

func TestClient_WatchFollowsSignInAndOut(t *testing.T) {
	b := newBackend(t)
	c, storage := b.newClient(t)
	cache := identity.New(context.Background(), c, storage)

	signUp(t, c, "kiran", profile.RoleFarmer)
	require.False(t, cache.IsAuthenticated())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cache.Watch(ctx)

	require.Eventually(t, func() bool { return c.Subscribers() == 1 }, 5*time.Second, 5*time.Millisecond)

	_, err := c.SignIn(context.Background(), "kiran@example.com", "secret123")
	require.NoError(t, err)
	assert.Eventually(t, cache.IsAuthenticated, 15*time.Second, 10*time.Millisecond)

	require.NoError(t, c.SignOut(context.Background()))
	assert.Eventually(t, func() bool { return !cache.IsAuthenticated() }, 15*time.Second, 10*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return c.Subscribers() == 0 }, 5*time.Second, 5*time.Millisecond)
}
