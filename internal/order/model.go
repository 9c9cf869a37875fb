package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid status")

// Statuses lists every valid order status in lifecycle order.
var Statuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (os OrderStatus) String() string {
	return string(os)
}

func (os OrderStatus) Valid() bool {
	switch os {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts a raw status string into an OrderStatus.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodCOD    PaymentMethod = "cod"
	MethodOnline PaymentMethod = "online"
)

func (pm PaymentMethod) String() string {
	return string(pm)
}

func (pm PaymentMethod) Valid() bool {
	switch pm {
	case MethodCash, MethodCOD, MethodOnline:
		return true
	}
	return false
}

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrSlipRequired         = errors.New("payment slip is required for online payments")
)

// Payment couples a payment method with its slip reference. A Payment built
// through NewPayment carries a slip exactly when the method is online, so the
// "online with no slip" state cannot reach the repository.
type Payment struct {
	Method PaymentMethod
	Slip   string
}

// NewPayment normalizes the method (empty defaults to cod), rejects online
// payments without a slip and drops the slip for offline methods.
func NewPayment(method PaymentMethod, slip string) (Payment, error) {
	if method == "" {
		method = MethodCOD
	}
	if !method.Valid() {
		return Payment{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	if method == MethodOnline {
		if slip == "" {
			return Payment{}, ErrSlipRequired
		}
		return Payment{Method: MethodOnline, Slip: slip}, nil
	}
	return Payment{Method: method}, nil
}

// ProductView is the catalog snapshot joined onto an order for display.
// It never feeds back into the stored snapshot columns.
type ProductView struct {
	Title  string   `json:"title,omitempty"`
	Image  []string `json:"image,omitempty"`
	Price  float64  `json:"price,omitempty"`
	Colors []string `json:"colors,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`
}

// UserView is the owning user joined onto an order for display.
type UserView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order is the persisted order record. The JSON field names are the wire
// contract consumed by the storefront and admin dashboard.
type Order struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user"`

	ProductID uuid.UUID `json:"productId"`

	CustomerName string `json:"customerName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`

	// Catalog snapshot taken at order time, immutable afterwards.
	ProductImage []string `json:"productImage"`
	ProductTitle string   `json:"productTitle"`
	ProductPrice float64  `json:"productPrice"`

	Size                string `json:"size"`
	Color               string `json:"color"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions"`

	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentSlip   string        `json:"paymentSlip,omitempty"`

	TotalAmount float64     `json:"totalAmount"`
	Status      OrderStatus `json:"orderStatus"`

	OrderDate   time.Time  `json:"orderDate"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	Product  *ProductView `json:"product,omitempty"`
	Customer *UserView    `json:"customer,omitempty"`
}

// StatusFilter restricts a listing to a single status. The zero value and
// AllStatuses() mean "no restriction"; the `all` query sentinel parses to it.
type StatusFilter struct {
	status    OrderStatus
	hasStatus bool
}

func AllStatuses() StatusFilter {
	return StatusFilter{}
}

func ByStatus(s OrderStatus) StatusFilter {
	return StatusFilter{status: s, hasStatus: true}
}

// Status reports the filtered status, if any.
func (f StatusFilter) Status() (OrderStatus, bool) {
	return f.status, f.hasStatus
}

// ParseStatusFilter interprets the raw `status` query parameter. Empty and
// "all" both mean no filter.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	if raw == "" || raw == "all" {
		return AllStatuses(), nil
	}
	s, err := ParseStatus(raw)
	if err != nil {
		return StatusFilter{}, err
	}
	return ByStatus(s), nil
}
