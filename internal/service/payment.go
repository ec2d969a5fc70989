package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a checkout session id is unknown to
// the provider.
var ErrSessionNotFound = errors.New("checkout session not found")

// Checkout session states as reported by the provider.
const (
	SessionOpen = "open"
	SessionPaid = "paid"
)

// CheckoutItem is one line item sent to the checkout provider.
type CheckoutItem struct {
	ProductID uint64 `json:"product_id"`
	Name      string `json:"name"`
	Quantity  uint32 `json:"quantity"`
	UnitCents uint64 `json:"unit_cents"`
}

// CheckoutSession is the provider's view of a checkout.  TotalCents is the
// amount after the coupon discount; the order is recorded with this value.
type CheckoutSession struct {
	ID          string         `json:"id"`
	URL         string         `json:"url"`
	Status      string         `json:"status"`
	UserID      uint64         `json:"-"`
	Items       []CheckoutItem `json:"-"`
	CouponCode  string         `json:"-"`
	DiscountPct uint8          `json:"-"`
	TotalCents  uint64         `json:"total_cents"`
}

// CheckoutProvider is the external payment collaborator.  The real
// provider lives outside this repository; handlers depend only on this
// contract.
type CheckoutProvider interface {
	// CreateSession opens a checkout for the given items and returns the
	// session with its id, redirect URL and discounted total filled in.
	CreateSession(ctx context.Context, sess CheckoutSession) (CheckoutSession, error)
	// Session returns the current state of a previously created session.
	Session(ctx context.Context, id string) (CheckoutSession, error)
}

// OfflineProvider implements CheckoutProvider without an external service.
// Sessions are held in memory and are considered paid as soon as they are
// created, which is what dev and test environments want.
type OfflineProvider struct {
	BaseURL string // prefix for the redirect URL shown to the client

	mu       sync.Mutex
	sessions map[string]CheckoutSession
}

func NewOfflineProvider(baseURL string) *OfflineProvider {
	return &OfflineProvider{BaseURL: baseURL, sessions: make(map[string]CheckoutSession)}
}

func (p *OfflineProvider) CreateSession(ctx context.Context, sess CheckoutSession) (CheckoutSession, error) {
	var total uint64
	for _, it := range sess.Items {
		total += it.UnitCents * uint64(it.Quantity)
	}
	if sess.DiscountPct > 0 {
		total -= total * uint64(sess.DiscountPct) / 100
	}
	sess.ID = uuid.NewString()
	sess.URL = p.BaseURL + "/checkout/" + sess.ID
	sess.Status = SessionPaid
	sess.TotalCents = total

	p.mu.Lock()
	p.sessions[sess.ID] = sess
	p.mu.Unlock()
	return sess, nil
}

func (p *OfflineProvider) Session(ctx context.Context, id string) (CheckoutSession, error) {
	p.mu.Lock()
	sess, ok := p.sessions[id]
	p.mu.Unlock()
	if !ok {
		return CheckoutSession{}, ErrSessionNotFound
	}
	return sess, nil
}
