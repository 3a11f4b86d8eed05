package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/integrations/payment"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/scheduling"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
	"github.com/noah-isme/driving-lesson-api/pkg/export"
)

// WarningScanExhausted flags a projection that ran out of days before placing every session.
const WarningScanExhausted = "SCAN_EXHAUSTED"

type bookingStore interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindByPaymentReference(ctx context.Context, paymentReference string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
}

type bookingAllocator interface {
	AllocateBooking(ctx context.Context, booking *models.Booking) (*models.BlockException, error)
	Release(ctx context.Context, bookingID string) (bool, error)
}

type bookingPlanner interface {
	ResolveDay(ctx context.Context, instructorID string, date time.Time) (models.ResolvedDaySlots, bool, error)
	Project(ctx context.Context, instructorID string, start time.Time, sessionCount int) (scheduling.Projection, error)
	BookedSessions(ctx context.Context, booking *models.Booking) (scheduling.Projection, error)
}

type availabilityInvalidator interface {
	Invalidate(ctx context.Context, instructorID string)
}

type bookingNotifier interface {
	BookingConfirmed(ctx context.Context, notice BookingNotice)
	BookingCancelled(ctx context.Context, notice BookingNotice)
}

// BookingConfig tunes BookingService.
type BookingConfig struct {
	Currency    string
	CheckoutTTL time.Duration
	Location    *time.Location
}

// BookingService prices plans, collects payment and turns verified payments into bookings.
type BookingService struct {
	instructors  instructorDirectory
	bookings     bookingStore
	planner      bookingPlanner
	allocator    bookingAllocator
	payments     payment.Client
	availability availabilityInvalidator
	notifier     bookingNotifier
	checkouts    *checkoutStore
	renderers    map[string]export.Renderer
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	currency     string
	location     *time.Location
	now          func() time.Time
}

// NewBookingService wires booking dependencies.
func NewBookingService(
	instructors instructorDirectory,
	bookings bookingStore,
	planner bookingPlanner,
	allocator bookingAllocator,
	payments payment.Client,
	availability availabilityInvalidator,
	notifier bookingNotifier,
	metrics *MetricsService,
	cfg BookingConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Currency == "" {
		cfg.Currency = "inr"
	}
	csv := export.NewCSVExporter()
	pdf := export.NewPDFExporter()
	return &BookingService{
		instructors:  instructors,
		bookings:     bookings,
		planner:      planner,
		allocator:    allocator,
		payments:     payments,
		availability: availability,
		notifier:     notifier,
		checkouts:    newCheckoutStore(cfg.CheckoutTTL, nil),
		renderers:    map[string]export.Renderer{csv.Extension(): csv, pdf.Extension(): pdf},
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		currency:     strings.ToLower(cfg.Currency),
		location:     cfg.Location,
		now:          time.Now,
	}
}

// Actor is the authenticated caller of a booking operation.
type Actor struct {
	UserID       string
	Role         models.UserRole
	InstructorID string
}

// ActorFromClaims builds an Actor from token claims.
func ActorFromClaims(claims *models.JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{UserID: claims.UserID, Role: claims.Role, InstructorID: claims.InstructorID}
}

type quoteResult struct {
	response   dto.QuoteResponse
	instructor *models.Instructor
	plan       models.PlanKind
	start      time.Time
	end        time.Time
	labels     []string
	pickup     dto.PickupLocation
}

// Quote validates a plan request against the instructor's availability and prices it.
func (s *BookingService) Quote(ctx context.Context, req dto.QuoteRequest) (*dto.QuoteResponse, error) {
	result, err := s.quote(ctx, req)
	if err != nil {
		return nil, err
	}
	return &result.response, nil
}

// Checkout quotes the plan and opens a payment order for it. The plan is held until the
// checkout expires or the payment is confirmed.
func (s *BookingService) Checkout(ctx context.Context, learnerID string, req dto.QuoteRequest, idempotencyKey string) (*dto.CheckoutResponse, error) {
	if learnerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	result, err := s.quote(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.response.ScanExhausted {
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, fmt.Sprintf(
			"only %d of %d sessions fit in the booking window", result.response.SessionsScheduled, result.response.SessionCount))
	}
	if result.response.AmountMinor <= 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "instructor has not set a lesson price")
	}

	order, err := s.payments.CreateOrder(ctx, payment.OrderRequest{
		AmountMinor: result.response.AmountMinor,
		Currency:    s.currency,
		Metadata: map[string]string{
			"learner_id":    learnerID,
			"instructor_id": result.instructor.ID,
			"plan":          string(result.plan),
			"start_date":    result.response.StartDate,
			"end_date":      result.response.EndDate,
			"labels":        strings.Join(result.labels, ","),
		},
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		s.logger.Error("payment order failed", zap.String("instructor_id", result.instructor.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "payment provider unavailable")
	}

	expiresAt := s.checkouts.Save(pendingCheckout{
		OrderID:    order.ID,
		LearnerID:  learnerID,
		Instructor: *result.instructor,
		Plan:       result.plan,
		StartDate:  result.start,
		EndDate:    result.end,
		Labels:     result.labels,
		Pickup:     result.pickup,
		Amount:     result.response.AmountMinor,
		Currency:   s.currency,
		CreatedAt:  s.now(),
	})
	s.logger.Info("checkout opened",
		zap.String("order_id", order.ID),
		zap.String("learner_id", learnerID),
		zap.String("instructor_id", result.instructor.ID),
		zap.Int64("amount_minor", result.response.AmountMinor),
	)
	return &dto.CheckoutResponse{
		OrderID:      order.ID,
		Provider:     order.Provider,
		ClientSecret: order.ClientSecret,
		ExpiresAt:    expiresAt.UTC(),
		Quote:        result.response,
	}, nil
}

// Confirm verifies payment for a checkout and books the plan. Confirming the same payment
// again returns the existing booking; the boolean reports whether a booking was created.
func (s *BookingService) Confirm(ctx context.Context, learnerID string, req dto.ConfirmBookingRequest) (*models.Booking, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, validationError(err, "invalid confirmation payload")
	}
	if learnerID == "" {
		return nil, false, appErrors.ErrUnauthorized
	}
	if existing, err := s.bookings.FindByPaymentReference(ctx, req.PaymentID); err == nil {
		if existing.LearnerID != learnerID {
			return nil, false, appErrors.Clone(appErrors.ErrForbidden, "payment belongs to another account")
		}
		s.metrics.RecordBooking(BookingOutcomeDuplicate)
		return existing, false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, typedOrInternal(err, "failed to look up payment")
	}

	checkout, ok := s.checkouts.Get(req.OrderID)
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "checkout expired or unknown")
	}
	if checkout.LearnerID != learnerID {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "checkout belongs to another account")
	}

	verified, err := s.payments.Verify(ctx, req.PaymentID, req.OrderID, req.Signature)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "payment provider unavailable")
	}
	if !verified {
		s.metrics.RecordBooking(BookingOutcomePaymentRejected)
		s.logger.Warn("payment not verified", zap.String("order_id", req.OrderID), zap.String("payment_id", req.PaymentID))
		return nil, false, appErrors.ErrPaymentNotVerified
	}

	booking := checkout.booking(req.PaymentID)
	if _, err := s.allocator.AllocateBooking(ctx, booking); err != nil {
		if errors.Is(err, appErrors.ErrSlotTaken) {
			s.metrics.RecordBooking(BookingOutcomeSlotTaken)
			return nil, false, err
		}
		if errors.Is(err, appErrors.ErrConflict) {
			// A concurrent confirm of the same payment won.
			if existing, lookupErr := s.bookings.FindByPaymentReference(ctx, req.PaymentID); lookupErr == nil && existing.LearnerID == learnerID {
				s.metrics.RecordBooking(BookingOutcomeDuplicate)
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	s.checkouts.Delete(req.OrderID)
	s.availability.Invalidate(ctx, booking.InstructorID)
	s.notifier.BookingConfirmed(ctx, noticeFor(booking, &checkout.Instructor))
	s.metrics.RecordBooking(BookingOutcomeConfirmed)
	s.logger.Info("booking confirmed",
		zap.String("booking_id", booking.ID),
		zap.String("order_id", req.OrderID),
		zap.String("instructor_id", booking.InstructorID),
		zap.String("learner_id", learnerID),
	)
	return booking, true, nil
}

// Cancel cancels a confirmed booking and frees its slots. Learners cancel their own bookings,
// instructors the bookings they teach, admins any booking.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error) {
	booking, err := s.Get(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "booking already cancelled")
	}
	released, err := s.allocator.Release(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if !released {
		return nil, appErrors.Clone(appErrors.ErrConflict, "booking already cancelled")
	}

	cancelledAt := s.now().UTC()
	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &cancelledAt
	s.availability.Invalidate(ctx, booking.InstructorID)

	var instructor *models.Instructor
	if found, err := s.instructors.FindByID(ctx, booking.InstructorID); err == nil {
		instructor = found
	}
	s.notifier.BookingCancelled(ctx, noticeFor(booking, instructor))
	s.metrics.RecordBooking(BookingOutcomeCancelled)
	s.logger.Info("booking cancelled", zap.String("booking_id", booking.ID), zap.String("by", actor.UserID))
	return booking, nil
}

// Get returns a booking visible to the actor.
func (s *BookingService) Get(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, "booking not found", "failed to load booking")
	}
	instructorID, err := s.actorInstructorID(ctx, actor)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleAdmin:
		return booking, nil
	case models.RoleLearner:
		if booking.LearnerID == actor.UserID {
			return booking, nil
		}
	case models.RoleInstructor:
		if instructorID != "" && booking.InstructorID == instructorID {
			return booking, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
}

// List pages the actor's bookings: learners see their purchases, instructors their lessons.
func (s *BookingService) List(ctx context.Context, actor Actor, query dto.BookingListQuery) ([]models.Booking, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, validationError(err, "invalid booking query")
	}
	filter := models.BookingFilter{Page: query.Page, PageSize: query.PageSize}
	if query.Status != "" {
		status := models.BookingStatus(query.Status)
		filter.Status = &status
	}
	switch actor.Role {
	case models.RoleLearner:
		filter.LearnerID = actor.UserID
	case models.RoleInstructor:
		instructorID, err := s.actorInstructorID(ctx, actor)
		if err != nil {
			return nil, nil, err
		}
		if instructorID == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "account has no instructor profile")
		}
		filter.InstructorID = instructorID
	case models.RoleAdmin:
	default:
		return nil, nil, appErrors.ErrForbidden
	}

	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, nil, typedOrInternal(err, "failed to list bookings")
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	page, size := pageBounds(filter.Page, filter.PageSize)
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Schedule lists the lesson days of a booking.
func (s *BookingService) Schedule(ctx context.Context, actor Actor, bookingID string) (*dto.BookingSchedule, error) {
	booking, err := s.Get(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	projection, err := s.planner.BookedSessions(ctx, booking)
	if err != nil {
		return nil, typedOrInternal(err, "failed to compute booking schedule")
	}
	return &dto.BookingSchedule{
		Booking:      booking,
		SessionDates: dto.FormatDates(projection.SessionDates),
		Complete:     !projection.ScanExhausted,
	}, nil
}

// ExportSchedule renders a booking's lesson days as csv or pdf.
func (s *BookingService) ExportSchedule(ctx context.Context, actor Actor, bookingID, format string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, validationError(nil, "format must be csv or pdf")
	}
	schedule, err := s.Schedule(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	body, err := renderer.Render(scheduleDataset(schedule))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("booking-%s-schedule.%s", schedule.Booking.ID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *BookingService) quote(ctx context.Context, req dto.QuoteRequest) (*quoteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid booking request")
	}
	plan, err := models.ParsePlanKind(req.Plan)
	if err != nil {
		return nil, validationError(err, "plan must be SHORT (7 sessions) or LONG (14 sessions)")
	}
	start, err := scheduling.ParseDate(req.StartDate)
	if err != nil {
		return nil, validationError(err, "start_date must be YYYY-MM-DD")
	}
	if start.Before(scheduling.Today(s.now(), s.location)) {
		return nil, validationError(nil, "start_date must not be in the past")
	}
	labels := scheduling.NormalizeLabels(req.Labels)
	if len(labels) == 0 {
		return nil, validationError(nil, "select at least one time slot")
	}

	instructor, err := s.instructors.FindByID(ctx, req.InstructorID)
	if err != nil {
		return nil, notFoundOr(err, "instructor not found", "failed to load instructor")
	}
	if !instructor.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}

	day, _, err := s.planner.ResolveDay(ctx, instructor.ID, start)
	if err != nil {
		return nil, typedOrInternal(err, "failed to resolve availability")
	}
	if missing := missingLabels(labels, day.Available); len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, fmt.Sprintf(
			"time slots not available on %s: %s", req.StartDate, strings.Join(missing, ", ")))
	}

	projection, err := s.planner.Project(ctx, instructor.ID, start, plan.SessionCount())
	if err != nil {
		return nil, typedOrInternal(err, "failed to project plan")
	}

	amount := int64(plan.SessionCount()) * int64(len(labels)) * instructor.HourlyRateMinor
	return &quoteResult{
		response: dto.QuoteResponse{
			InstructorID:      instructor.ID,
			StartDate:         dto.FormatDate(projection.StartDate),
			EndDate:           dto.FormatDate(projection.EndDate),
			Labels:            labels,
			Plan:              plan,
			SessionCount:      plan.SessionCount(),
			SessionsScheduled: projection.SessionsScheduled,
			SessionDates:      dto.FormatDates(projection.SessionDates),
			AmountMinor:       amount,
			Currency:          s.currency,
			ScanExhausted:     projection.ScanExhausted,
		},
		instructor: instructor,
		plan:       plan,
		start:      projection.StartDate,
		end:        projection.EndDate,
		labels:     labels,
		pickup:     *req.Pickup,
	}, nil
}

func (s *BookingService) actorInstructorID(ctx context.Context, actor Actor) (string, error) {
	if actor.Role != models.RoleInstructor {
		return "", nil
	}
	if actor.InstructorID != "" {
		return actor.InstructorID, nil
	}
	instructor, err := s.instructors.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", typedOrInternal(err, "failed to load instructor profile")
	}
	return instructor.ID, nil
}

// QuoteWarnings lists the soft failures of a quote.
func QuoteWarnings(quote *dto.QuoteResponse) []string {
	if quote != nil && quote.ScanExhausted {
		return []string{WarningScanExhausted}
	}
	return nil
}

func (c pendingCheckout) booking(paymentID string) *models.Booking {
	now := time.Now().UTC()
	lat, lng := c.Pickup.Latitude, c.Pickup.Longitude
	booking := &models.Booking{
		ID:               uuid.NewString(),
		LearnerID:        c.LearnerID,
		InstructorID:     c.Instructor.ID,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		TimeSlotLabels:   pq.StringArray(c.Labels),
		PlanKind:         c.Plan,
		PaymentReference: paymentID,
		OrderID:          c.OrderID,
		AmountMinor:      c.Amount,
		Currency:         c.Currency,
		PickupLatitude:   &lat,
		PickupLongitude:  &lng,
		Status:           models.BookingStatusConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if address := strings.TrimSpace(c.Pickup.Address); address != "" {
		booking.PickupAddress = &address
	}
	return booking
}

func noticeFor(booking *models.Booking, instructor *models.Instructor) BookingNotice {
	notice := BookingNotice{
		BookingID: booking.ID,
		LearnerID: booking.LearnerID,
		StartDate: dto.FormatDate(booking.StartDate),
		EndDate:   dto.FormatDate(booking.EndDate),
		Labels:    append([]string(nil), booking.TimeSlotLabels...),
	}
	if instructor != nil {
		notice.InstructorUserID = instructor.UserID
		notice.InstructorName = instructor.FullName
	}
	return notice
}

func missingLabels(requested, available []string) []string {
	offered := make(map[string]struct{}, len(available))
	for _, label := range available {
		offered[label] = struct{}{}
	}
	var missing []string
	for _, label := range requested {
		if _, ok := offered[label]; !ok {
			missing = append(missing, label)
		}
	}
	return missing
}

func scheduleDataset(schedule *dto.BookingSchedule) export.Dataset {
	booking := schedule.Booking
	labels := strings.Join(booking.TimeSlotLabels, ", ")
	rows := make([]map[string]string, 0, len(schedule.SessionDates))
	for i, raw := range schedule.SessionDates {
		weekday := ""
		if date, err := scheduling.ParseDate(raw); err == nil {
			weekday = date.Weekday().String()
		}
		rows = append(rows, map[string]string{
			"Session":    strconv.Itoa(i + 1),
			"Date":       raw,
			"Weekday":    weekday,
			"Time slots": labels,
		})
	}
	notes := []string{
		fmt.Sprintf("Plan: %s (%d sessions)", booking.PlanKind, booking.PlanKind.SessionCount()),
		fmt.Sprintf("Period: %s to %s", dto.FormatDate(booking.StartDate), dto.FormatDate(booking.EndDate)),
		fmt.Sprintf("Status: %s", booking.Status),
	}
	if !schedule.Complete {
		notes = append(notes, "Some sessions could not be placed within the booking period.")
	}
	return export.Dataset{
		Title:   "Lesson schedule " + booking.ID,
		Notes:   notes,
		Headers: []string{"Session", "Date", "Weekday", "Time slots"},
		Rows:    rows,
	}
}
