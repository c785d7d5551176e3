package models

// Actor is the authenticated caller of a booking operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type CreateBookingRequest struct {
	// ParentID is honoured for admins only; parents always book for themselves.
	ParentID      string        `json:"parentId,omitempty"`
	NannyID       string        `json:"nannyId" binding:"required"`
	Date          string        `json:"date" binding:"required"`
	StartTime     string        `json:"startTime" binding:"required"`
	EndTime       string        `json:"endTime" binding:"required"`
	TotalHours    float64       `json:"totalHours" binding:"required,gt=0"`
	HourlyRate    float64       `json:"hourlyRate" binding:"gte=0"`
	TotalAmount   float64       `json:"totalAmount" binding:"gte=0"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Notes         string        `json:"notes,omitempty" binding:"max=2000"`
	Address       string        `json:"address,omitempty" binding:"max=500"`
}

type BookingQuery struct {
	Status   BookingStatus `form:"status"`
	Page     int           `form:"page"`
	Limit    int           `form:"limit"`
	As       string        `form:"as"`
	ParentID string        `form:"parentId"`
	NannyID  string        `form:"nannyId"`
}

type StatusUpdateRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
	Reason string        `json:"reason,omitempty" binding:"max=1000"`
	// CancelledBy is honoured for admins only.
	CancelledBy CancelledBy `json:"cancelledBy,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type RatingRequest struct {
	Score  int    `json:"score" binding:"required,min=1,max=5"`
	Review string `json:"review,omitempty" binding:"max=2000"`
}

type PaymentRequest struct {
	Method          PaymentMethod `json:"method" binding:"required"`
	TransactionID   string        `json:"transactionId,omitempty"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty"`
}

type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"required"`
}

type RedeemQRRequest struct {
	Token string `json:"token" binding:"required"`
}

// ProofInput is the proof image attached to an OTP completion. Either a local
// file to upload or an already hosted URL.
type ProofInput struct {
	FilePath string
	URL      string
}
