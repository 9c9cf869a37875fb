package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/clothing-store-backend/internal/product"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidID     = errors.New("invalid order ID format")
)

// ConflictError rejects a self-service edit or cancel because the order has
// already left the editable part of its lifecycle. The current status is
// echoed so the client can explain the refusal.
type ConflictError struct {
	Op            string
	CurrentStatus OrderStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Order cannot be %s. Current status: %s", e.Op, e.CurrentStatus)
}

// TransitionTable declares which administrative status transitions are legal.
type TransitionTable map[OrderStatus]map[OrderStatus]bool

// Allows reports whether from -> to is a permitted transition.
func (t TransitionTable) Allows(from, to OrderStatus) bool {
	next, ok := t[from]
	return ok && next[to]
}

// Permissive allows any enum-valid status from any current status. This is
// the shipped default: administrators may set any status at any time.
func Permissive() TransitionTable {
	t := make(TransitionTable, len(Statuses))
	for _, from := range Statuses {
		next := make(map[OrderStatus]bool, len(Statuses))
		for _, to := range Statuses {
			next[to] = true
		}
		t[from] = next
	}
	return t
}

// ForwardOnly enforces the sequential lifecycle with cancellation from any
// non-terminal state. Not wired by default; swap it in via WithTransitions
// when stricter sequencing is wanted.
func ForwardOnly() TransitionTable {
	return TransitionTable{
		StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
		StatusConfirmed:  {StatusProcessing: true, StatusCancelled: true},
		StatusProcessing: {StatusShipped: true, StatusCancelled: true},
		StatusShipped:    {StatusDelivered: true, StatusCancelled: true},
		StatusDelivered:  {},
		StatusCancelled:  {},
	}
}

// nonEditable are the statuses that freeze an order against self-service
// edits and cancellation.
var nonEditable = map[OrderStatus]bool{
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// Clock supplies the current time for every stamped timestamp.
type Clock func() time.Time

// ListParams controls the paged admin listing.
type ListParams struct {
	Filter StatusFilter
	Page   int
	Limit  int
}

// Page is one page of the admin listing.
type Page struct {
	Orders      []Order `json:"orders"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	Total       int     `json:"total"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalOrders     int     `json:"totalOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	CompletedOrders int     `json:"completedOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
	RecentOrders    []Order `json:"recentOrders"`
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context, params ListParams) (*Page, error)
	SetStatus(ctx context.Context, id string, rawStatus string) (*Order, error)
	Edit(ctx context.Context, id string, in EditInput) (*Order, error)
	Cancel(ctx context.Context, id string) (*Order, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo        Repository
	products    product.SnapshotProvider
	events      EventPublisher
	transitions TransitionTable
	clock       Clock
}

// Option overrides a service default.
type Option func(*service)

// WithClock injects a deterministic time source, used by tests.
func WithClock(c Clock) Option {
	return func(s *service) { s.clock = c }
}

// WithTransitions swaps the administrative transition table.
func WithTransitions(t TransitionTable) Option {
	return func(s *service) { s.transitions = t }
}

func NewService(repo Repository, products product.SnapshotProvider, events EventPublisher, opts ...Option) Service {
	s := &service{
		repo:        repo,
		products:    products,
		events:      events,
		transitions: Permissive(),
		clock:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	payment, vErr := ValidateCreate(in)
	if vErr != nil {
		log.Warn().Str("code", vErr.Code).Msg("service: order payload rejected")
		return nil, vErr
	}

	if schemaErr := validateSchema(in); schemaErr != nil {
		log.Warn().Strs("details", schemaErr.Details).Msg("service: order payload failed schema validation")
		return nil, schemaErr
	}

	now := s.clock()
	ord := &Order{
		UserID:              in.UserID,
		ProductID:           in.ProductID,
		CustomerName:        in.CustomerName,
		Email:               in.Email,
		Phone:               in.Phone,
		Address:             in.Address,
		ProductImage:        in.ProductImage,
		ProductTitle:        in.ProductTitle,
		ProductPrice:        in.ProductPrice,
		Size:                in.Size,
		Color:               in.Color,
		Quantity:            in.Quantity,
		SpecialInstructions: in.SpecialInstructions,
		PaymentMethod:       payment.Method,
		PaymentSlip:         payment.Slip,
		// The caller-supplied total is trusted verbatim at creation time.
		// Only the edit path recomputes it from the stored price snapshot.
		TotalAmount: in.TotalAmount,
		Status:      StatusPending,
		OrderDate:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, ord); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	s.events.Publish(ctx, Event{
		Type:       EventCreated,
		OrderID:    ord.ID.String(),
		UserID:     ord.UserID.String(),
		Status:     ord.Status,
		OccurredAt: now,
	})

	log.Info().Stringer("order_id", ord.ID).Stringer("user_id", ord.UserID).Msg("service: order created")
	return ord, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ord, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	s.attachProductViews(ctx, ord)
	return ord, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", uid).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	s.attachProductViewsAll(ctx, orders)
	return orders, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*Page, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}

	offset := (params.Page - 1) * params.Limit
	orders, total, err := s.repo.List(ctx, params.Filter, params.Limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	s.attachProductViewsAll(ctx, orders)

	totalPages := (total + params.Limit - 1) / params.Limit
	return &Page{
		Orders:      orders,
		TotalPages:  totalPages,
		CurrentPage: params.Page,
		Total:       total,
	}, nil
}

func (s *service) SetStatus(ctx context.Context, id string, rawStatus string) (*Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	newStatus, err := ParseStatus(rawStatus)
	if err != nil {
		log.Warn().Str("status", rawStatus).Msg("service: rejected unknown order status")
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if !s.transitions.Allows(current.Status, newStatus) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: status transition not allowed")
		return nil, &ConflictError{Op: "updated", CurrentStatus: current.Status}
	}

	now := s.clock()
	// Keep cancelledAt consistent with the status even when cancellation
	// happens through the administrative path.
	var cancelledAt *time.Time
	if newStatus == StatusCancelled {
		cancelledAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, newStatus, cancelledAt, now)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	s.events.Publish(ctx, Event{
		Type:       EventStatusChanged,
		OrderID:    updated.ID.String(),
		UserID:     updated.UserID.String(),
		Status:     updated.Status,
		OccurredAt: now,
	})

	log.Info().
		Stringer("order_id", orderID).
		Stringer("old_status", current.Status).
		Stringer("new_status", newStatus).
		Msg("service: order status updated")
	return updated, nil
}

func (s *service) Edit(ctx context.Context, id string, in EditInput) (*Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if vErr := ValidateEdit(in); vErr != nil {
		return nil, vErr
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to get order for edit: %w", err)
	}

	if nonEditable[current.Status] {
		return nil, &ConflictError{Op: "updated", CurrentStatus: current.Status}
	}

	// Recompute from the stored snapshot price, never from a caller value.
	newTotal := current.ProductPrice * float64(in.Quantity)

	updated, err := s.repo.ApplyEdit(ctx, orderID, in, newTotal, s.clock())
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to apply order edit")
		return nil, fmt.Errorf("service: failed to apply order edit: %w", err)
	}

	s.attachProductViews(ctx, updated)

	log.Info().Stringer("order_id", orderID).Msg("service: order updated")
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, id string) (*Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to get order for cancel: %w", err)
	}

	if nonEditable[current.Status] {
		return nil, &ConflictError{Op: "cancelled", CurrentStatus: current.Status}
	}

	now := s.clock()
	cancelled, err := s.repo.Cancel(ctx, orderID, now)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to cancel order")
		return nil, fmt.Errorf("service: failed to cancel order: %w", err)
	}

	s.events.Publish(ctx, Event{
		Type:       EventCancelled,
		OrderID:    cancelled.ID.String(),
		UserID:     cancelled.UserID.String(),
		Status:     cancelled.Status,
		OccurredAt: now,
	})

	s.attachProductViews(ctx, cancelled)

	log.Info().Stringer("order_id", orderID).Msg("service: order cancelled")
	return cancelled, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to aggregate order stats")
		return nil, fmt.Errorf("service: failed to aggregate order stats: %w", err)
	}

	// Recent orders carry only the minimal product view the dashboard needs.
	for i := range stats.RecentOrders {
		snap := s.lookupSnapshot(ctx, stats.RecentOrders[i].ProductID)
		if snap == nil {
			continue
		}
		stats.RecentOrders[i].Product = &ProductView{
			Title:  snap.Title,
			Colors: snap.Colors,
			Sizes:  snap.Sizes,
		}
	}
	return stats, nil
}

// validateSchema enforces the record-level requirements the create codes do
// not cover: order specifications must be present and sane.
func validateSchema(in CreateInput) *ValidationError {
	var details []string
	if in.Size == "" {
		details = append(details, "size is required")
	}
	if in.Color == "" {
		details = append(details, "color is required")
	}
	if in.Quantity < 1 {
		details = append(details, "quantity must be at least 1")
	}
	if in.ProductTitle == "" {
		details = append(details, "productTitle is required")
	}
	if in.ProductPrice <= 0 {
		details = append(details, "productPrice must be positive")
	}
	if len(details) > 0 {
		return &ValidationError{
			Code:    CodeValidationError,
			Message: "Validation failed",
			Details: details,
		}
	}
	return nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

func (s *service) attachProductViews(ctx context.Context, orders ...*Order) {
	for _, ord := range orders {
		if ord == nil || ord.Product != nil {
			continue
		}
		snap := s.lookupSnapshot(ctx, ord.ProductID)
		if snap == nil {
			continue
		}
		ord.Product = &ProductView{
			Title:  snap.Title,
			Image:  snap.Image,
			Price:  snap.Price,
			Colors: snap.Colors,
			Sizes:  snap.Sizes,
		}
	}
}

func (s *service) attachProductViewsAll(ctx context.Context, orders []Order) {
	// Orders for the same product share one snapshot fetch.
	cache := make(map[uuid.UUID]*product.Snapshot)
	for i := range orders {
		snap, seen := cache[orders[i].ProductID]
		if !seen {
			snap = s.lookupSnapshot(ctx, orders[i].ProductID)
			cache[orders[i].ProductID] = snap
		}
		if snap == nil {
			continue
		}
		orders[i].Product = &ProductView{
			Title:  snap.Title,
			Image:  snap.Image,
			Price:  snap.Price,
			Colors: snap.Colors,
			Sizes:  snap.Sizes,
		}
	}
}

// lookupSnapshot fetches the display snapshot for a product. A missing or
// failing lookup degrades to an unenriched order rather than an error.
func (s *service) lookupSnapshot(ctx context.Context, productID uuid.UUID) *product.Snapshot {
	snap, err := s.products.GetSnapshot(ctx, productID)
	if err != nil {
		if !errors.Is(err, product.ErrNotFound) {
			log.Warn().Err(err).Stringer("product_id", productID).Msg("service: product snapshot lookup failed")
		}
		return nil
	}
	return snap
}
