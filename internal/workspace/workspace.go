package workspace

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/fjod/go_cart/storefront/internal/store"
)

// Workspace is one browser session's set of stores, all talking through the same gateway client.
type Workspace struct {
	ID          string
	Credentials *store.CredentialStore
	Cart        *store.CartStore
	Checkout    *store.CheckoutStore
	Gateway     *gateway.Client

	// mutations serializes user actions so at most one mutation per session is in flight.
	mutations sync.Mutex
	lastSeen  atomic.Int64

	// owner is the user the cached cart and checkout belong to. Guarded by mutations.
	owner int64
}

// Lock blocks until no other mutation of this workspace is running.
func (w *Workspace) Lock() {
	w.mutations.Lock()
}

func (w *Workspace) Unlock() {
	w.mutations.Unlock()
}

func (w *Workspace) touch(now time.Time) {
	w.lastSeen.Store(now.UnixNano())
}

func (w *Workspace) LastSeen() time.Time {
	return time.Unix(0, w.lastSeen.Load())
}

// HandleUnauthorized is the gateway's 401 hook. The identity goes first, then the cart and
// checkout cached for it, so nothing of the rejected user survives for the next login.
func (w *Workspace) HandleUnauthorized() {
	w.Credentials.HandleUnauthorized()
	w.Checkout.ResetCheckout()
	w.Cart.Reset()
}

// SignedIn records the user now holding the session. Cart and checkout state cached for a
// different user is dropped. The caller must hold the mutation lock.
func (w *Workspace) SignedIn(userID int64) {
	if w.owner == userID {
		return
	}
	w.owner = userID
	w.Checkout.ResetCheckout()
	w.Cart.Reset()
}

// SignedOut forgets the owner along with its cart and checkout. The caller must hold the
// mutation lock.
func (w *Workspace) SignedOut() {
	w.owner = 0
	w.Checkout.ResetCheckout()
	w.Cart.Reset()
}
