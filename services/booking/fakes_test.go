package booking

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"carenest/database"
	bookingRepo "carenest/database/repository/booking"
	"carenest/models"

	"go.uber.org/zap"
)

// fakeBookingRepo keeps bookings in memory and enforces the same version guard
// as the Mongo repository.
type fakeBookingRepo struct {
	mu           sync.Mutex
	bookings     map[string]models.Booking
	transactions []models.Transaction
	earnings     map[string]float64
	jobs         map[string]int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: map[string]models.Booking{},
		earnings: map[string]float64{},
		jobs:     map[string]int{},
	}
}

func (r *fakeBookingRepo) blocking(nannyID, date string) []models.Booking {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.NannyID == nannyID && b.Date == date &&
			(b.Status == models.StatusPending || b.Status == models.StatusConfirmed) {
			out = append(out, b)
		}
	}
	return out
}

func (r *fakeBookingRepo) CreateExclusive(ctx context.Context, b *models.Booking, check bookingRepo.OverlapCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := check(r.blocking(b.NannyID, b.Date)); err != nil {
		return err
	}
	for _, existing := range r.bookings {
		if existing.BookingRef == b.BookingRef || existing.ID == b.ID {
			return database.ErrDuplicate
		}
	}
	r.bookings[b.ID] = *b
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBookingRepo) GetByQRToken(ctx context.Context, token string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Completion.QRToken != nil && *b.Completion.QRToken == token {
			found := b
			return &found, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *fakeBookingRepo) List(ctx context.Context, filter models.BookingFilter, page, limit int) ([]models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Booking
	for _, b := range r.bookings {
		if filter.ParentID != "" && b.ParentID != filter.ParentID {
			continue
		}
		if filter.NannyID != "" && b.NannyID != filter.NannyID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Booking{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeBookingRepo) FindBlocking(ctx context.Context, nannyID, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blocking(nannyID, date), nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok {
		return database.ErrNotFound
	}
	if stored.Version != b.Version {
		return database.ErrStateChanged
	}
	b.Version++
	r.bookings[b.ID] = *b
	return nil
}

func (r *fakeBookingRepo) Complete(ctx context.Context, b *models.Booking, earning *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok {
		return database.ErrNotFound
	}
	if stored.Version != b.Version {
		return database.ErrStateChanged
	}
	for _, tx := range r.transactions {
		if tx.BookingID == earning.BookingID && tx.Kind == earning.Kind {
			return database.ErrDuplicate
		}
	}
	b.Version++
	r.bookings[b.ID] = *b
	r.earnings[earning.UserID] += earning.Amount
	r.jobs[earning.UserID]++
	r.transactions = append(r.transactions, *earning)
	return nil
}

func (r *fakeBookingRepo) ClearExpiredQRTokens(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, b := range r.bookings {
		if b.Completion.QRToken != nil && b.Completion.QRExpiresAt != nil && b.Completion.QRExpiresAt.Before(now) {
			b.Completion.QRToken = nil
			b.Completion.QRExpiresAt = nil
			b.Version++
			r.bookings[id] = b
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) EnsureIndexes(ctx context.Context) error { return nil }

// put stores b directly, bypassing the overlap check.
func (r *fakeBookingRepo) put(b models.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = b
}

func (r *fakeBookingRepo) earningCount(bookingID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, tx := range r.transactions {
		if tx.BookingID == bookingID && tx.Kind == models.TransactionEarning {
			n++
		}
	}
	return n
}

type fakeUsers map[string]*models.User

func (f fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (p *recordingPublisher) Publish(n models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

func (p *recordingPublisher) byType(kind string) []models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.Notification
	for _, n := range p.sent {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

type recordingSMS struct {
	mu       sync.Mutex
	messages map[string][]string
}

func (s *recordingSMS) SendSMS(ctx context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.messages == nil {
		s.messages = map[string][]string{}
	}
	s.messages[phone] = append(s.messages[phone], message)
	return nil
}

type recordingScheduler struct {
	payloads []models.ReminderPayload
	fireAts  []time.Time
}

func (s *recordingScheduler) ScheduleBookingReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	s.payloads = append(s.payloads, payload)
	s.fireAts = append(s.fireAts, fireAt)
	return nil
}

type fakeRefunder struct {
	intents []string
	err     error
}

func (f *fakeRefunder) Refund(ctx context.Context, paymentIntentID, reason string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.intents = append(f.intents, paymentIntentID)
	return "re_" + paymentIntentID, nil
}

var (
	parentActor   = models.Actor{UserID: "parent-1", Role: models.RoleParent}
	nannyActor    = models.Actor{UserID: "nanny-1", Role: models.RoleNanny}
	adminActor    = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	strangerActor = models.Actor{UserID: "parent-2", Role: models.RoleParent}
)

// testNow is a Tuesday morning in UTC.
var testNow = time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	svc       *DefaultBookingService
	repo      *fakeBookingRepo
	pub       *recordingPublisher
	sms       *recordingSMS
	reminders *recordingScheduler
	refunder  *fakeRefunder
	now       *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := fakeUsers{
		"parent-1": {ID: "parent-1", Name: "Amina", Phone: "+254700000001", Role: models.RoleParent},
		"parent-2": {ID: "parent-2", Name: "Brian", Phone: "+254700000002", Role: models.RoleParent},
		"nanny-1":  {ID: "nanny-1", Name: "Grace", Phone: "+254700000003", Role: models.RoleNanny, Provider: models.DefaultProviderProfile(models.RoleNanny)},
		"daycare-1": {ID: "daycare-1", Name: "Little Steps", Phone: "+254700000004", Role: models.RoleDaycare,
			Provider: models.DefaultProviderProfile(models.RoleDaycare)},
		"admin-1": {ID: "admin-1", Name: "Ops", Phone: "+254700000005", Role: models.RoleAdmin},
	}

	env := &testEnv{
		repo:      newFakeBookingRepo(),
		pub:       &recordingPublisher{},
		sms:       &recordingSMS{},
		reminders: &recordingScheduler{},
		refunder:  &fakeRefunder{},
	}
	now := testNow
	env.now = &now

	settings := DefaultSettings()
	settings.ExposeCodes = true
	svc, err := NewBookingService(env.repo, users, env.pub, env.sms, env.reminders, nil, env.refunder, settings, zap.NewNop())
	if err != nil {
		t.Fatalf("NewBookingService: %v", err)
	}
	svc.Now = func() time.Time { return *env.now }
	env.svc = svc
	return env
}

func (e *testEnv) advance(d time.Duration) {
	*e.now = e.now.Add(d)
}

// seed stores a booking for parent-1 and nanny-1 on 2026-10-21 in the given status.
func (e *testEnv) seed(id string, status models.BookingStatus) models.Booking {
	b := models.Booking{
		ID:          id,
		BookingRef:  "BK" + id,
		ParentID:    "parent-1",
		NannyID:     "nanny-1",
		Date:        "2026-10-21",
		StartTime:   "09:00",
		EndTime:     "17:00",
		TotalHours:  8,
		HourlyRate:  15,
		TotalAmount: 120,
		Status:      status,
		Payment:     models.Payment{Status: models.PaymentPending, Method: models.PaymentCash},
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	e.repo.put(b)
	return b
}
