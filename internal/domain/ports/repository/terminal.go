package repository

import (
	"context"

	"saman-gateway-mock/internal/domain/model"
)

type TerminalRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Terminal) error
	FindByID(ctx context.Context, tx Tx, id uint64) (*model.Terminal, error)
	List(ctx context.Context, tx Tx) ([]*model.Terminal, error)
	Exists(ctx context.Context, tx Tx, id uint64) (bool, error)
}
