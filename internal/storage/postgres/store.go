package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"isafeDashboard/internal/model"
)

// Schema creates the snapshot tables when they are missing.
const Schema = `
CREATE TABLE IF NOT EXISTS account_events (
	account      TEXT        NOT NULL,
	seq          BIGINT      NOT NULL,
	event_type   TEXT        NOT NULL,
	fired_in_tx  TEXT        NOT NULL,
	data         JSONB       NOT NULL,
	event_ts     TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (account, seq)
);
CREATE TABLE IF NOT EXISTS account_members (
	account    TEXT        NOT NULL,
	member     TEXT        NOT NULL,
	weight     BIGINT      NOT NULL,
	position   INT         NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (account, member)
);
CREATE TABLE IF NOT EXISTS snapshot_state (
	name       TEXT PRIMARY KEY,
	state      JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for snapshots.
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

// EnsureSchema applies Schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutEvents inserts or updates event records keyed by account and sequence.
func (s *Store) PutEvents(ctx context.Context, records []model.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		data, err := json.Marshal(r.Event.Data)
		if err != nil {
			return fmt.Errorf("marshal event %d payload: %w", r.Seq, err)
		}
		batch.Queue(`
			INSERT INTO account_events (
				account, seq, event_type, fired_in_tx, data, event_ts, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			ON CONFLICT (account, seq)
			DO UPDATE SET
				event_type = EXCLUDED.event_type,
				fired_in_tx = EXCLUDED.fired_in_tx,
				data = EXCLUDED.data,
				event_ts = EXCLUDED.event_ts,
				updated_at = now()
		`,
			r.Account,
			r.Seq,
			string(r.Event.EventType),
			r.Event.FiredInTx,
			data,
			r.Event.Timestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutAccount replaces the stored member set of an account.
func (s *Store) PutAccount(ctx context.Context, snapshot model.AccountSnapshot) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		members := make([]string, len(snapshot.Members))
		for i, m := range snapshot.Members {
			members[i] = m.Address
		}
		if _, err := tx.Exec(ctx, `DELETE FROM account_members WHERE account = $1 AND NOT (member = ANY($2))`, snapshot.Account, members); err != nil {
			return fmt.Errorf("delete removed members: %w", err)
		}

		batch := &pgx.Batch{}
		for i, m := range snapshot.Members {
			batch.Queue(`
				INSERT INTO account_members (account, member, weight, position, updated_at)
				VALUES ($1, $2, $3, $4, now())
				ON CONFLICT (account, member)
				DO UPDATE SET
					weight = EXCLUDED.weight,
					position = EXCLUDED.position,
					updated_at = now()
			`, snapshot.Account, m.Address, int64(m.Weight), i)
		}
		br := tx.SendBatch(ctx, batch)
		for range snapshot.Members {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("upsert member: %w", err)
			}
		}
		return br.Close()
	})
}

// LoadState decodes the JSON state saved under name into v.
func (s *Store) LoadState(ctx context.Context, name string, v any) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("state name required")
	}
	var data []byte
	row := s.pool.QueryRow(ctx, `SELECT state FROM snapshot_state WHERE name=$1`, name)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse state %s: %w", name, err)
	}
	return true, nil
}

// SaveState upserts v as the JSON state for name.
func (s *Store) SaveState(ctx context.Context, name string, v any) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal state %s: %w", name, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO snapshot_state (name, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET state = EXCLUDED.state, updated_at = now()
	`, name, data)
	return err
}
