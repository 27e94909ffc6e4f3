package model

import "time"

// VerificationStatus is the lifecycle state of a persisted verification record.
type VerificationStatus string

// Verification statuses.
const (
	VerificationPending   VerificationStatus = "pending"
	VerificationVerified  VerificationStatus = "verified"
	VerificationFailed    VerificationStatus = "failed"
	VerificationDuplicate VerificationStatus = "duplicate"
	VerificationManual    VerificationStatus = "manual"
)

// Valid reports whether the status is one of the known values.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationFailed,
		VerificationDuplicate, VerificationManual:
		return true
	}
	return false
}

// VerificationRecord is the persisted outcome of confirming a payment
// against an order.
type VerificationRecord struct {
	CreatedAt     time.Time
	PaymentTime   time.Time
	ID            string
	OrderID       string
	BankName      string
	UPIReference  string
	SenderID      string
	ReceiverID    string
	TransactionID string
	Status        VerificationStatus
	Errors        []string
	Amount        float64
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses.
const (
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
)

// Order is the slice of an order record the verification core reads and
// updates. The rest of the order schema belongs to the admin application.
type Order struct {
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ID                    string
	Status                OrderStatus
	PaymentVerificationID string
	Amount                float64
	PaymentConfirmed      bool
	AutoVerified          bool
}

// OrderPaymentStatus is a full snapshot of one order's payment state as
// delivered to bridge subscribers. Each emission is authoritative-as-of-now;
// snapshots are never diffed or merged.
type OrderPaymentStatus struct {
	OrderID          string
	Status           OrderStatus
	VerificationID   string
	PaymentConfirmed bool
	AutoVerified     bool
}

// SnapshotFromOrder translates an order record into a payment status snapshot.
func SnapshotFromOrder(o *Order) OrderPaymentStatus {
	return OrderPaymentStatus{
		OrderID:          o.ID,
		Status:           o.Status,
		VerificationID:   o.PaymentVerificationID,
		PaymentConfirmed: o.PaymentConfirmed,
		AutoVerified:     o.AutoVerified,
	}
}
