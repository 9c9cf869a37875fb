package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Repository persists order records. Update operations are single-statement
// and therefore atomic per record; concurrent writers to the same record
// resolve last-write-wins, there is no version token.
type Repository interface {
	Create(ctx context.Context, ord *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	List(ctx context.Context, filter StatusFilter, limit, offset int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus, cancelledAt *time.Time, now time.Time) (*Order, error)
	ApplyEdit(ctx context.Context, id uuid.UUID, in EditInput, totalAmount float64, now time.Time) (*Order, error)
	Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*Order, error)
	Stats(ctx context.Context) (*Stats, error)
}

const orderColumns = `
	id, user_id, product_id, customer_name, email, phone, address,
	product_image, product_title, product_price, size, color, quantity,
	special_instructions, payment_method, payment_slip, total_amount,
	order_status, order_date, updated_at, cancelled_at`

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, ord *Order) error {
	if ord.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", err)
		}
		ord.ID = id
	}

	query := `
		INSERT INTO orders (
			id, user_id, product_id, customer_name, email, phone, address,
			product_image, product_title, product_price, size, color, quantity,
			special_instructions, payment_method, payment_slip, total_amount,
			order_status, order_date, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.db.Exec(ctx, query,
		ord.ID,
		ord.UserID,
		ord.ProductID,
		ord.CustomerName,
		ord.Email,
		ord.Phone,
		ord.Address,
		ord.ProductImage,
		ord.ProductTitle,
		ord.ProductPrice,
		ord.Size,
		ord.Color,
		ord.Quantity,
		ord.SpecialInstructions,
		string(ord.PaymentMethod),
		nullableString(ord.PaymentSlip),
		ord.TotalAmount,
		string(ord.Status),
		ord.OrderDate,
		ord.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `
		SELECT
			o.id, o.user_id, o.product_id, o.customer_name, o.email, o.phone, o.address,
			o.product_image, o.product_title, o.product_price, o.size, o.color, o.quantity,
			o.special_instructions, o.payment_method, o.payment_slip, o.total_amount,
			o.order_status, o.order_date, o.updated_at, o.cancelled_at,
			u.name, u.email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`

	var (
		ord       Order
		slip      *string
		userName  *string
		userEmail *string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ord.ID,
		&ord.UserID,
		&ord.ProductID,
		&ord.CustomerName,
		&ord.Email,
		&ord.Phone,
		&ord.Address,
		&ord.ProductImage,
		&ord.ProductTitle,
		&ord.ProductPrice,
		&ord.Size,
		&ord.Color,
		&ord.Quantity,
		&ord.SpecialInstructions,
		&ord.PaymentMethod,
		&slip,
		&ord.TotalAmount,
		&ord.Status,
		&ord.OrderDate,
		&ord.UpdatedAt,
		&ord.CancelledAt,
		&userName,
		&userEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	if slip != nil {
		ord.PaymentSlip = *slip
	}
	if userName != nil || userEmail != nil {
		ord.Customer = &UserView{}
		if userName != nil {
			ord.Customer.Name = *userName
		}
		if userEmail != nil {
			ord.Customer.Email = *userEmail
		}
	}

	return &ord, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `
		SELECT` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *postgresRepository) List(ctx context.Context, filter StatusFilter, limit, offset int) ([]Order, int, error) {
	where := ""
	args := []any{}
	if status, ok := filter.Status(); ok {
		where = "WHERE order_status = $1"
		args = append(args, string(status))
	}

	countQuery := "SELECT COUNT(*) FROM orders " + where

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count orders: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT`+orderColumns+`
		FROM orders
		%s
		ORDER BY order_date DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus, cancelledAt *time.Time, now time.Time) (*Order, error) {
	query := `
		UPDATE orders
		SET order_status = $1, cancelled_at = $2, updated_at = $3
		WHERE id = $4
		RETURNING` + orderColumns

	return r.queryOneOrder(ctx, query, string(status), cancelledAt, now, id)
}

func (r *postgresRepository) ApplyEdit(ctx context.Context, id uuid.UUID, in EditInput, totalAmount float64, now time.Time) (*Order, error) {
	query := `
		UPDATE orders
		SET customer_name = $1, email = $2, phone = $3, address = $4,
			size = $5, color = $6, quantity = $7, special_instructions = $8,
			total_amount = $9, updated_at = $10
		WHERE id = $11
		RETURNING` + orderColumns

	return r.queryOneOrder(ctx, query,
		in.CustomerName,
		in.Email,
		in.Phone,
		in.Address,
		in.Size,
		in.Color,
		in.Quantity,
		in.SpecialInstructions,
		totalAmount,
		now,
		id,
	)
}

func (r *postgresRepository) Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*Order, error) {
	query := `
		UPDATE orders
		SET order_status = $1, cancelled_at = $2, updated_at = $2
		WHERE id = $3
		RETURNING` + orderColumns

	return r.queryOneOrder(ctx, query, string(StatusCancelled), now, id)
}

func (r *postgresRepository) Stats(ctx context.Context) (*Stats, error) {
	summaryQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE order_status = 'pending'),
			COUNT(*) FILTER (WHERE order_status = 'delivered'),
			COALESCE(SUM(total_amount) FILTER (WHERE order_status <> 'cancelled'), 0)
		FROM orders
	`

	var stats Stats
	err := r.db.QueryRow(ctx, summaryQuery).Scan(
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.CompletedOrders,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to aggregate order stats: %w", err)
	}

	recentQuery := `
		SELECT` + orderColumns + `
		FROM orders
		ORDER BY order_date DESC
		LIMIT 5
	`

	rows, err := r.db.Query(ctx, recentQuery)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query recent orders: %w", err)
	}
	defer rows.Close()

	recent, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	stats.RecentOrders = recent

	return &stats, nil
}

func (r *postgresRepository) queryOneOrder(ctx context.Context, query string, args ...any) (*Order, error) {
	var (
		ord  Order
		slip *string
	)
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&ord.ID,
		&ord.UserID,
		&ord.ProductID,
		&ord.CustomerName,
		&ord.Email,
		&ord.Phone,
		&ord.Address,
		&ord.ProductImage,
		&ord.ProductTitle,
		&ord.ProductPrice,
		&ord.Size,
		&ord.Color,
		&ord.Quantity,
		&ord.SpecialInstructions,
		&ord.PaymentMethod,
		&slip,
		&ord.TotalAmount,
		&ord.Status,
		&ord.OrderDate,
		&ord.UpdatedAt,
		&ord.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Msg("repository: order update failed")
		return nil, fmt.Errorf("repository: order update failed: %w", err)
	}

	if slip != nil {
		ord.PaymentSlip = *slip
	}
	return &ord, nil
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	orders := make([]Order, 0)
	for rows.Next() {
		var (
			ord  Order
			slip *string
		)
		err := rows.Scan(
			&ord.ID,
			&ord.UserID,
			&ord.ProductID,
			&ord.CustomerName,
			&ord.Email,
			&ord.Phone,
			&ord.Address,
			&ord.ProductImage,
			&ord.ProductTitle,
			&ord.ProductPrice,
			&ord.Size,
			&ord.Color,
			&ord.Quantity,
			&ord.SpecialInstructions,
			&ord.PaymentMethod,
			&slip,
			&ord.TotalAmount,
			&ord.Status,
			&ord.OrderDate,
			&ord.UpdatedAt,
			&ord.CancelledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		if slip != nil {
			ord.PaymentSlip = *slip
		}
		orders = append(orders, ord)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	return orders, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
