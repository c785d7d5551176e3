package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"carenest/models"
	"carenest/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStartingIn stores a confirmed booking starting d after testNow.
func (e *testEnv) seedStartingIn(id string, d time.Duration) {
	start := testNow.Add(d)
	b := e.seed(id, models.StatusConfirmed)
	b.Date = start.Format(dateLayout)
	b.StartTime = start.Format("15:04")
	b.EndTime = "23:00"
	e.repo.put(b)
}

func TestCancelBooking_Cutoff(t *testing.T) {
	tests := []struct {
		name    string
		startIn time.Duration
		allowed bool
	}{
		{"four hours and one minute", 4*time.Hour + time.Minute, true},
		{"exactly four hours", 4 * time.Hour, false},
		{"three hours fifty-nine minutes", 3*time.Hour + 59*time.Minute, false},
		{"already started", -time.Hour, false},
		{"next week", 7 * 24 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seedStartingIn("b-1", tt.startIn)

			b, err := env.svc.CancelBooking(context.Background(), parentActor, "b-1", "plans changed")
			if !tt.allowed {
				assert.Equal(t, utils.KindState, utils.KindOf(err))
				stored, _ := env.repo.GetByID(context.Background(), "b-1")
				assert.Equal(t, models.StatusConfirmed, stored.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StatusCancelled, b.Status)
			require.NotNil(t, b.Cancellation)
			assert.Equal(t, models.CancelledByParent, b.Cancellation.CancelledBy)
			assert.Equal(t, "plans changed", b.Cancellation.Reason)
		})
	}
}

func TestCancelBooking_TwelveHourStart(t *testing.T) {
	env := newTestEnv(t)
	b := env.seed("b-1", models.StatusPending)
	b.Date = "2026-10-20"
	b.StartTime = "12:01 PM"
	env.repo.put(b)

	_, err := env.svc.CancelBooking(context.Background(), nannyActor, "b-1", "")
	require.NoError(t, err)
	assert.Len(t, env.pub.byType("booking_cancelled"), 1)
	assert.Equal(t, "parent-1", env.pub.byType("booking_cancelled")[0].RecipientID)
}

func TestCancelBooking_AdminBypassesCutoff(t *testing.T) {
	env := newTestEnv(t)
	env.seedStartingIn("b-1", time.Hour)

	b, err := env.svc.CancelBooking(context.Background(), adminActor, "b-1", "safety concern")
	require.NoError(t, err)
	assert.Equal(t, models.CancelledByAdmin, b.Cancellation.CancelledBy)
	assert.Len(t, env.pub.byType("booking_cancelled"), 2)
}

func TestCancelBooking_TerminalRefused(t *testing.T) {
	env := newTestEnv(t)
	env.seed("b-completed", models.StatusCompleted)
	env.seed("b-cancelled", models.StatusCancelled)

	_, err := env.svc.CancelBooking(context.Background(), parentActor, "b-completed", "")
	assert.Equal(t, utils.KindState, utils.KindOf(err))
	_, err = env.svc.CancelBooking(context.Background(), parentActor, "b-cancelled", "")
	assert.Equal(t, utils.KindState, utils.KindOf(err))
}

func TestCancelBooking_Forbidden(t *testing.T) {
	env := newTestEnv(t)
	env.seed("b-1", models.StatusPending)

	_, err := env.svc.CancelBooking(context.Background(), strangerActor, "b-1", "")
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
}

func TestCancelBooking_RefundsOnlinePayment(t *testing.T) {
	env := newTestEnv(t)
	b := env.seed("b-1", models.StatusConfirmed)
	paidAt := testNow.Add(-time.Hour)
	b.Payment = models.Payment{
		Status:          models.PaymentPaid,
		Method:          models.PaymentOnline,
		PaidAt:          &paidAt,
		PaymentIntentID: "pi_123",
	}
	env.repo.put(b)

	cancelled, err := env.svc.CancelBooking(context.Background(), parentActor, "b-1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"pi_123"}, env.refunder.intents)
	assert.Equal(t, models.PaymentRefunded, cancelled.Payment.Status)
	assert.Equal(t, "re_pi_123", cancelled.Payment.RefundID)

	stored, err := env.repo.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, stored.Payment.Status)
}

func TestCancelBooking_RefundFailureKeepsCancellation(t *testing.T) {
	env := newTestEnv(t)
	env.refunder.err = errors.New("stripe unavailable")
	b := env.seed("b-1", models.StatusConfirmed)
	b.Payment = models.Payment{Status: models.PaymentPaid, Method: models.PaymentOnline, PaymentIntentID: "pi_123"}
	env.repo.put(b)

	cancelled, err := env.svc.CancelBooking(context.Background(), parentActor, "b-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentPaid, cancelled.Payment.Status)
}
