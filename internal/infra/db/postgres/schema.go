package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Migrate creates the gateway schema if it does not exist. The mock is
// self-contained on purpose: pointing it at an empty database must be
// enough to start testing a merchant integration.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS terminals (
  id       BIGSERIAL PRIMARY KEY,
  name     TEXT NOT NULL,
  username TEXT NOT NULL,
  password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
  id                     BIGSERIAL PRIMARY KEY,
  terminal_id            BIGINT NOT NULL REFERENCES terminals(id),
  token                  TEXT NOT NULL UNIQUE,
  amount                 BIGINT NOT NULL,
  res_num                TEXT NOT NULL,
  res_num1               TEXT,
  res_num2               TEXT,
  res_num3               TEXT,
  res_num4               TEXT,
  redirect_url           TEXT NOT NULL,
  wage                   BIGINT,
  affective_amount       BIGINT,
  cell_number            TEXT,
  token_expiry_min       INT NOT NULL CHECK (token_expiry_min >= 20 AND token_expiry_min <= 3600),
  hashed_card_number     TEXT,
  txn_random_session_key BIGINT,
  status                 TEXT NOT NULL,
  created_at             TIMESTAMPTZ NOT NULL,
  expires_at             TIMESTAMPTZ NOT NULL,
  receipt_expires_at     TIMESTAMPTZ NOT NULL,
  submitted_at           TIMESTAMPTZ,
  verify_deadline        TIMESTAMPTZ,
  reverse_deadline       TIMESTAMPTZ,
  rrn                    BIGINT,
  ref_num                TEXT,
  trace_no               BIGINT,
  paid_card_number       TEXT,
  hashed_paid_card       TEXT,
  secure_pan             TEXT,
  failed_at              TIMESTAMPTZ,
  cancelled_at           TIMESTAMPTZ,
  verified_at            TIMESTAMPTZ,
  reversed_at            TIMESTAMPTZ,
  UNIQUE (terminal_id, res_num)
);

CREATE INDEX IF NOT EXISTS transactions_status_expires_idx
  ON transactions (status, expires_at);
CREATE INDEX IF NOT EXISTS transactions_terminal_refnum_idx
  ON transactions (terminal_id, ref_num);
`
	_, err := pool.Exec(ctx, ddl)
	return err
}
