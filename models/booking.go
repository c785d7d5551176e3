package models

import "time"

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusRejected   BookingStatus = "rejected"
)

// AllStatuses lists every valid booking status.
var AllStatuses = []BookingStatus{
	StatusPending, StatusConfirmed, StatusInProgress,
	StatusCompleted, StatusCancelled, StatusRejected,
}

// CompletableStatuses are the states from which a booking may be completed.
var CompletableStatuses = []BookingStatus{StatusConfirmed, StatusInProgress}

// BlockingStatuses are the states that reserve a provider's time.
var BlockingStatuses = []BookingStatus{StatusPending, StatusConfirmed}

func (s BookingStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

func (s BookingStatus) Completable() bool {
	return s == StatusConfirmed || s == StatusInProgress
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
	PaymentWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentOnline || m == PaymentWallet
}

// Booking is one service engagement between a parent and a provider.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	BookingRef string `bson:"bookingRef" json:"bookingRef"`
	ParentID   string `bson:"parentId" json:"parentId"`
	NannyID    string `bson:"nannyId" json:"nannyId"`

	Date       string  `bson:"date" json:"date"`           // YYYY-MM-DD
	StartTime  string  `bson:"startTime" json:"startTime"` // "14:00" or "2:00 PM"
	EndTime    string  `bson:"endTime" json:"endTime"`
	TotalHours float64 `bson:"totalHours" json:"totalHours"`
	HourlyRate float64 `bson:"hourlyRate" json:"hourlyRate"`
	// Caller supplied, never recomputed.
	TotalAmount float64 `bson:"totalAmount" json:"totalAmount"`
	Notes       string  `bson:"notes,omitempty" json:"notes,omitempty"`
	Address     string  `bson:"address,omitempty" json:"address,omitempty"`

	Status          BookingStatus `bson:"status" json:"status"`
	RejectionReason string        `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	Cancellation    *Cancellation `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Payment         Payment       `bson:"payment" json:"payment"`
	Rating          Rating        `bson:"rating" json:"rating"`
	Completion      Completion    `bson:"completion" json:"completion"`

	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	StartedAt   *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`

	// Version guards every write; a save only lands on the version it was read at.
	Version int `bson:"version" json:"-"`
}

// IsParty reports whether userID is the parent or the provider of the booking.
func (b *Booking) IsParty(userID string) bool {
	return userID != "" && (b.ParentID == userID || b.NannyID == userID)
}

type CancelledBy string

const (
	CancelledByParent CancelledBy = "parent"
	CancelledByNanny  CancelledBy = "nanny"
	CancelledByAdmin  CancelledBy = "admin"
)

type Cancellation struct {
	CancelledBy CancelledBy `bson:"cancelledBy" json:"cancelledBy"`
	Reason      string      `bson:"reason" json:"reason"`
	CancelledAt time.Time   `bson:"cancelledAt" json:"cancelledAt"`
}

type Payment struct {
	Status          PaymentStatus `bson:"status" json:"status"`
	Method          PaymentMethod `bson:"method" json:"method"`
	PaidAt          *time.Time    `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	RefundedAt      *time.Time    `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
	TransactionID   string        `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaymentIntentID string        `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	RefundID        string        `bson:"refundId,omitempty" json:"refundId,omitempty"`
}

type RatingEntry struct {
	Score   int       `bson:"score" json:"score"`
	Review  string    `bson:"review,omitempty" json:"review,omitempty"`
	RatedAt time.Time `bson:"ratedAt" json:"ratedAt"`
}

type Rating struct {
	Parent *RatingEntry `bson:"parent,omitempty" json:"parent,omitempty"`
	Nanny  *RatingEntry `bson:"nanny,omitempty" json:"nanny,omitempty"`
}

// Completion holds the proof that the service took place. The OTP and the QR
// token are secrets and never leave the server in a booking representation.
type Completion struct {
	OTP          string     `bson:"otp,omitempty" json:"-"`
	OTPExpiresAt *time.Time `bson:"otpExpiresAt,omitempty" json:"otpExpiresAt,omitempty"`
	OTPVerified  bool       `bson:"otpVerified" json:"otpVerified"`
	ProofImage   string     `bson:"proofImage,omitempty" json:"proofImage,omitempty"`
	VerifiedAt   *time.Time `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	QRToken      *string    `bson:"qrToken,omitempty" json:"-"`
	QRExpiresAt  *time.Time `bson:"qrExpiresAt,omitempty" json:"qrExpiresAt,omitempty"`
}

// BookingFilter narrows a booking listing.
type BookingFilter struct {
	ParentID string
	NannyID  string
	Status   BookingStatus
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// BookingPage is a page of bookings plus its pagination block.
type BookingPage struct {
	Bookings   []Booking  `json:"bookings"`
	Pagination Pagination `json:"pagination"`
}
