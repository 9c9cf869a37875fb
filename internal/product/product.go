package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

// Snapshot is the catalog view joined onto orders for display purposes.
// Orders keep their own immutable copy of title/image/price taken at
// placement time; this snapshot reflects the catalog as it is now.
type Snapshot struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Image  []string  `json:"image"`
	Price  float64   `json:"price"`
	Colors []string  `json:"colors"`
	Sizes  []string  `json:"sizes"`
}

type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, productID uuid.UUID) (*Snapshot, error)
}

type postgresProvider struct {
	db *pgxpool.Pool
}

func NewPostgresProvider(db *pgxpool.Pool) SnapshotProvider {
	return &postgresProvider{db: db}
}

func (p *postgresProvider) GetSnapshot(ctx context.Context, productID uuid.UUID) (*Snapshot, error) {
	query := `
		SELECT id, title, image, price, colors, sizes
		FROM products
		WHERE id = $1
	`

	var snap Snapshot
	err := p.db.QueryRow(ctx, query, productID).Scan(
		&snap.ID,
		&snap.Title,
		&snap.Image,
		&snap.Price,
		&snap.Colors,
		&snap.Sizes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("product: failed to select product %s: %w", productID, err)
	}

	return &snap, nil
}
