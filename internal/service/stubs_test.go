package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/driving-lesson-api/internal/integrations/notification"
	"github.com/noah-isme/driving-lesson-api/internal/integrations/payment"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/scheduling"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
	"github.com/noah-isme/driving-lesson-api/pkg/jobs"
)

func mustDate(raw string) time.Time {
	d, err := scheduling.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func floatPtr(v float64) *float64 { return &v }

func stringPtr(v string) *string { return &v }

func weekly(instructorID string, day time.Weekday, labels ...string) models.WeeklyAvailability {
	return models.WeeklyAvailability{InstructorID: instructorID, DayOfWeek: int(day), TimeSlotLabels: labels, IsActive: true}
}

func allWeek(instructorID string, labels ...string) []models.WeeklyAvailability {
	entries := make([]models.WeeklyAvailability, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		entries = append(entries, weekly(instructorID, day, labels...))
	}
	return entries
}

// memoryCache stores JSON payloads the way the Redis repository does.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

type instructorDirectoryStub struct {
	instructors map[string]*models.Instructor
	listErr     error
	lastFilter  models.InstructorFilter
}

func newInstructorDirectory(instructors ...*models.Instructor) *instructorDirectoryStub {
	stub := &instructorDirectoryStub{instructors: make(map[string]*models.Instructor)}
	for _, instructor := range instructors {
		stub.instructors[instructor.ID] = instructor
	}
	return stub
}

func (s *instructorDirectoryStub) FindByID(_ context.Context, id string) (*models.Instructor, error) {
	if instructor, ok := s.instructors[id]; ok {
		clone := *instructor
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *instructorDirectoryStub) FindByUserID(_ context.Context, userID string) (*models.Instructor, error) {
	for _, instructor := range s.instructors {
		if instructor.UserID == userID {
			clone := *instructor
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *instructorDirectoryStub) List(_ context.Context, filter models.InstructorFilter) ([]models.Instructor, error) {
	s.lastFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	ids := make([]string, 0, len(s.instructors))
	for id := range s.instructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]models.Instructor, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.instructors[id])
	}
	return out, nil
}

type weeklyStoreStub struct {
	entries      map[string][]models.WeeklyAvailability
	listCalls    int
	replacedDays []int
	replacedWith []string
	err          error
}

func (s *weeklyStoreStub) ListByInstructor(_ context.Context, instructorID string, includeInactive bool) ([]models.WeeklyAvailability, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.WeeklyAvailability
	for _, entry := range s.entries[instructorID] {
		if entry.IsActive || includeInactive {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *weeklyStoreStub) ReplaceWeekly(_ context.Context, instructorID string, days []int, labels []string) ([]models.WeeklyAvailability, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.replacedDays = days
	s.replacedWith = labels
	out := make([]models.WeeklyAvailability, 0, len(days))
	for _, day := range days {
		out = append(out, weekly(instructorID, time.Weekday(day), labels...))
	}
	return out, nil
}

type exceptionStoreStub struct {
	exceptions []models.BlockException
	created    []models.BlockException
	deleted    []string
	createErr  error
}

func (s *exceptionStoreStub) ListFrom(_ context.Context, instructorID string, from time.Time) ([]models.BlockException, error) {
	var out []models.BlockException
	for _, exception := range s.exceptions {
		if exception.InstructorID == instructorID && !exception.EndDate.Before(from) {
			out = append(out, exception)
		}
	}
	return out, nil
}

func (s *exceptionStoreStub) FindByID(_ context.Context, id string) (*models.BlockException, error) {
	for _, exception := range s.exceptions {
		if exception.ID == id {
			clone := exception
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *exceptionStoreStub) Create(_ context.Context, _ sqlx.ExtContext, exception *models.BlockException) error {
	if s.createErr != nil {
		return s.createErr
	}
	if exception.ID == "" {
		exception.ID = "exception-new"
	}
	s.created = append(s.created, *exception)
	return nil
}

func (s *exceptionStoreStub) Delete(_ context.Context, id string) (bool, error) {
	s.deleted = append(s.deleted, id)
	return true, nil
}

type snapshotStub struct {
	mu        sync.Mutex
	snapshots map[string]*AvailabilitySnapshot
	err       error
	calls     []string
}

func (s *snapshotStub) Snapshot(_ context.Context, instructorID string, from time.Time) (*AvailabilitySnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, instructorID)
	if s.err != nil {
		return nil, false, s.err
	}
	snapshot, ok := s.snapshots[instructorID]
	if !ok {
		return &AvailabilitySnapshot{InstructorID: instructorID, From: from}, false, nil
	}
	clone := *snapshot
	clone.From = from
	return &clone, false, nil
}

type allocationStoreStub struct {
	err        error
	exceptions []models.BlockException
	bookings   []*models.Booking
	released   []string
	release    bool
}

func (s *allocationStoreStub) Allocate(_ context.Context, exception *models.BlockException, booking *models.Booking) error {
	if s.err != nil {
		return s.err
	}
	exception.ID = "exception-" + *exception.BookingID
	s.exceptions = append(s.exceptions, *exception)
	if booking != nil {
		s.bookings = append(s.bookings, booking)
	}
	return nil
}

func (s *allocationStoreStub) Release(_ context.Context, bookingID string, _ time.Time) (bool, error) {
	s.released = append(s.released, bookingID)
	return s.release, nil
}

type bookingStoreStub struct {
	bookings map[string]*models.Booking
	filter   models.BookingFilter
}

func newBookingStore(bookings ...*models.Booking) *bookingStoreStub {
	stub := &bookingStoreStub{bookings: make(map[string]*models.Booking)}
	for _, booking := range bookings {
		stub.bookings[booking.ID] = booking
	}
	return stub
}

func (s *bookingStoreStub) FindByID(_ context.Context, id string) (*models.Booking, error) {
	if booking, ok := s.bookings[id]; ok {
		clone := *booking
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *bookingStoreStub) FindByPaymentReference(_ context.Context, reference string) (*models.Booking, error) {
	for _, booking := range s.bookings {
		if booking.PaymentReference == reference {
			clone := *booking
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *bookingStoreStub) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	s.filter = filter
	var out []models.Booking
	for _, booking := range s.bookings {
		if filter.LearnerID != "" && booking.LearnerID != filter.LearnerID {
			continue
		}
		if filter.InstructorID != "" && booking.InstructorID != filter.InstructorID {
			continue
		}
		out = append(out, *booking)
	}
	return out, len(out), nil
}

type paymentStub struct {
	verified  bool
	verifyErr error
	createErr error
	orders    []payment.OrderRequest
}

func (p *paymentStub) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.Order, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.orders = append(p.orders, req)
	return &payment.Order{ID: "order-1", Provider: "stub", AmountMinor: req.AmountMinor, Currency: req.Currency, ClientSecret: "secret-1"}, nil
}

func (p *paymentStub) Verify(_ context.Context, _, _, _ string) (bool, error) {
	return p.verified, p.verifyErr
}

func (p *paymentStub) Provider() string { return "stub" }

type invalidatorStub struct {
	instructors []string
}

func (s *invalidatorStub) Invalidate(_ context.Context, instructorID string) {
	s.instructors = append(s.instructors, instructorID)
}

type bookingNotifierStub struct {
	confirmed []BookingNotice
	cancelled []BookingNotice
}

func (s *bookingNotifierStub) BookingConfirmed(_ context.Context, notice BookingNotice) {
	s.confirmed = append(s.confirmed, notice)
}

func (s *bookingNotifierStub) BookingCancelled(_ context.Context, notice BookingNotice) {
	s.cancelled = append(s.cancelled, notice)
}

type enqueuerStub struct {
	jobs []jobs.Job
	err  error
}

func (s *enqueuerStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

type notifierStub struct {
	sent []notification.Notification
	err  error
}

func (s *notifierStub) Notify(_ context.Context, n notification.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}
