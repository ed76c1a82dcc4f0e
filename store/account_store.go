package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/MohamedH1998/onbored-sub001/logging"
	"github.com/MohamedH1998/onbored-sub001/metrics"
	"github.com/MohamedH1998/onbored-sub001/models"
)

// AccountStore reads authoritative account records. It never writes.
type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

// GetAccounts returns the project's accounts with the given ids. Ids with no
// record are simply absent from the result.
func (s *AccountStore) GetAccounts(ctx context.Context, projectID string, ids []string) ([]models.AccountRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, plan, mrr, lifecycle_stage
		FROM accounts
		WHERE project_id = $1 AND id = ANY($2);
	`
	rows, err := s.db.QueryContext(ctx, query, projectID, pq.Array(ids))
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues("postgres", "accounts").Inc()
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.AccountRecord
	for rows.Next() {
		var (
			a         models.AccountRecord
			plan      sql.NullString
			mrr       sql.NullFloat64
			lifecycle sql.NullString
		)
		if err := rows.Scan(&a.AccountID, &a.Name, &plan, &mrr, &lifecycle); err != nil {
			logging.Warn().Err(err).Msg("Error scanning account row")
			continue
		}
		if plan.Valid {
			a.Plan = &plan.String
		}
		if mrr.Valid {
			a.MRR = &mrr.Float64
		}
		if lifecycle.Valid {
			a.Lifecycle = &lifecycle.String
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}
