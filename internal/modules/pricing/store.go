// README: Pricing store backed by PostgreSQL.
package pricing

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ActivePolicy loads the single active policy row plus its courier bands.
func (s *Store) ActivePolicy(ctx context.Context) (Policy, error) {
	var p Policy
	var policyID int64

	query, args, err := s.sb.
		Select("id", "per_km_fee", "handling_near_km", "handling_near_fee", "handling_far_fee",
			"surcharge_medium_at", "surcharge_medium_fee", "surcharge_high_at", "surcharge_high_fee", "currency").
		From("pricing_policies").
		Where(sq.Eq{"active": true}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return Policy{}, fmt.Errorf("build policy query: %w", err)
	}

	row := s.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&policyID, &p.PerKmFee, &p.HandlingNearKm, &p.HandlingNearFee, &p.HandlingFarFee,
		&p.SurchargeMediumAt, &p.SurchargeMediumFee, &p.SurchargeHighAt, &p.SurchargeHighFee, &p.Currency); err != nil {
		return Policy{}, fmt.Errorf("scan policy: %w", err)
	}

	query, args, err = s.sb.
		Select("max_km", "fee").
		From("courier_fee_bands").
		Where(sq.Eq{"policy_id": policyID}).
		OrderBy("max_km ASC").
		ToSql()
	if err != nil {
		return Policy{}, fmt.Errorf("build bands query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return Policy{}, fmt.Errorf("query bands: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b Band
		if err := rows.Scan(&b.MaxKm, &b.Fee); err != nil {
			return Policy{}, fmt.Errorf("scan band: %w", err)
		}
		p.Bands = append(p.Bands, b)
	}
	if err := rows.Err(); err != nil {
		return Policy{}, fmt.Errorf("iterate bands: %w", err)
	}
	return p, nil
}
