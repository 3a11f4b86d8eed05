package service

import (
	"sync"
	"time"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/models"
)

// pendingCheckout is a priced plan waiting for payment, keyed by payment order id.
type pendingCheckout struct {
	OrderID    string
	LearnerID  string
	Instructor models.Instructor
	Plan       models.PlanKind
	StartDate  time.Time
	EndDate    time.Time
	Labels     []string
	Pickup     dto.PickupLocation
	Amount     int64
	Currency   string
	CreatedAt  time.Time
}

type checkoutStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]pendingCheckout
}

func newCheckoutStore(ttl time.Duration, now func() time.Time) *checkoutStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &checkoutStore{
		ttl:   ttl,
		now:   now,
		items: make(map[string]pendingCheckout),
	}
}

func (s *checkoutStore) Save(checkout pendingCheckout) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.items[checkout.OrderID] = checkout
	return checkout.CreatedAt.Add(s.ttl)
}

func (s *checkoutStore) Get(orderID string) (pendingCheckout, bool) {
	s.mu.RLock()
	checkout, ok := s.items[orderID]
	s.mu.RUnlock()
	if !ok {
		return pendingCheckout{}, false
	}
	if s.now().Sub(checkout.CreatedAt) > s.ttl {
		s.Delete(orderID)
		return pendingCheckout{}, false
	}
	return checkout, true
}

func (s *checkoutStore) Delete(orderID string) {
	s.mu.Lock()
	delete(s.items, orderID)
	s.mu.Unlock()
}

func (s *checkoutStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// sweepLocked drops expired checkouts; callers hold the write lock.
func (s *checkoutStore) sweepLocked() {
	now := s.now()
	for id, checkout := range s.items {
		if now.Sub(checkout.CreatedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}
