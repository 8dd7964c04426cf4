package postgres

import (
	"context"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cleaner removes an entry with its whole analysis subtree
type Cleaner struct {
	pool *pgxpool.Pool
}

// NewCleaner creates Cleaner instance
func NewCleaner(pool *pgxpool.Pool) (*Cleaner, error) {
	res := &Cleaner{pool: pool}
	return res, nil
}

// Clean deletes entry row, dependent transcript and analysis rows go
// away through FK cascades
func (db *Cleaner) Clean(ctx context.Context, id string) error {
	cmd, err := db.pool.Exec(ctx, `DELETE FROM entry WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("can't delete %s: %w", id, err)
	}
	goapp.Log.Info().Str("ID", id).Int64("rows", cmd.RowsAffected()).Msg("deleted")
	return nil
}
