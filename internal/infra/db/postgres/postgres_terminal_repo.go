package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
	"saman-gateway-mock/internal/domain/ports/repository"
)

var _ repository.TerminalRepository = (*terminalRepo)(nil)

type terminalRepo struct{ pool *pgxpool.Pool }

func NewTerminalRepo(pool *pgxpool.Pool) *terminalRepo {
	return &terminalRepo{pool: pool}
}

func (r *terminalRepo) Save(ctx context.Context, tx repository.Tx, t *model.Terminal) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `INSERT INTO terminals (name, username, password) VALUES ($1,$2,$3) RETURNING id;`
	if err := ex.QueryRow(ctx, q, t.Name, t.Username, t.Password).Scan(&t.ID); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *terminalRepo) FindByID(ctx context.Context, tx repository.Tx, id uint64) (*model.Terminal, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, name, username, password FROM terminals WHERE id=$1;`
	t := &model.Terminal{}
	if err := ex.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.Username, &t.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *terminalRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Terminal, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, name, username, password FROM terminals ORDER BY id;`
	rows, err := ex.Query(ctx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Terminal
	for rows.Next() {
		t := &model.Terminal{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Username, &t.Password); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *terminalRepo) Exists(ctx context.Context, tx repository.Tx, id uint64) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	const q = `SELECT COUNT(*) > 0 FROM terminals WHERE id=$1;`
	var exists bool
	if err := ex.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
