package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ammcore/internal/model"
)

// Store provides Postgres persistence for pool events and snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertEvents appends committed pool events.
func (s *Store) InsertEvents(ctx context.Context, events []model.PoolEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(`
			INSERT INTO pool_events (
				pool_id, seq, op, actor, amount_a, amount_b, amount_in, amount_out,
				side, shares_minted, shares_burned, fee_bps, paused, new_owner,
				reserve_a, reserve_b, share_supply, event_ts, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,to_timestamp($18),now())
		`,
			ev.PoolID,
			int64(ev.Seq),
			ev.Op,
			ev.Actor,
			int64(ev.AmountA),
			int64(ev.AmountB),
			int64(ev.AmountIn),
			int64(ev.AmountOut),
			ev.Side,
			int64(ev.SharesMinted),
			int64(ev.SharesBurned),
			int32(ev.FeeBps),
			ev.Paused,
			ev.NewOwner,
			int64(ev.ReserveA),
			int64(ev.ReserveB),
			int64(ev.ShareSupply),
			ev.Timestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertSnapshots inserts or updates pool state rows.
func (s *Store) UpsertSnapshots(ctx context.Context, snaps []model.PoolSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snaps {
		batch.Queue(`
			INSERT INTO pools (
				pool_id, asset_a, asset_b, reserve_a, reserve_b, share_supply,
				fee_bps, paused, owner, cumulative_volume, cumulative_fees,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
			ON CONFLICT (pool_id)
			DO UPDATE SET
				reserve_a = EXCLUDED.reserve_a,
				reserve_b = EXCLUDED.reserve_b,
				share_supply = EXCLUDED.share_supply,
				fee_bps = EXCLUDED.fee_bps,
				paused = EXCLUDED.paused,
				owner = EXCLUDED.owner,
				cumulative_volume = EXCLUDED.cumulative_volume,
				cumulative_fees = EXCLUDED.cumulative_fees,
				updated_at = now()
		`,
			snap.ID,
			snap.AssetA,
			snap.AssetB,
			int64(snap.ReserveA),
			int64(snap.ReserveB),
			int64(snap.ShareSupply),
			int32(snap.FeeBps),
			snap.Paused,
			snap.Owner,
			snap.CumulativeVolume,
			snap.CumulativeFees,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snaps {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
