package models

import "time"

type TransactionKind string

const (
	TransactionEarning    TransactionKind = "earning"
	TransactionWithdrawal TransactionKind = "withdrawal"
	TransactionRefund     TransactionKind = "refund"
)

// Transaction is an immutable entry of the earnings log.
type Transaction struct {
	ID          string          `bson:"id" json:"id"`
	UserID      string          `bson:"userId" json:"userId"`
	Kind        TransactionKind `bson:"kind" json:"kind"`
	Amount      float64         `bson:"amount" json:"amount"`
	Status      string          `bson:"status" json:"status"`
	Description string          `bson:"description" json:"description"`
	BookingID   string          `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	BookingRef  string          `bson:"bookingRef,omitempty" json:"bookingRef,omitempty"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}
