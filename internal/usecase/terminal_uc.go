// File: internal/usecase/terminal_uc.go
package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
	"saman-gateway-mock/internal/domain/ports/repository"
)

// Compile-time check
var _ TerminalUseCase = (*terminalUC)(nil)

type TerminalUseCase interface {
	// Create registers a merchant terminal and generates its credentials.
	Create(ctx context.Context, name string) (*model.Terminal, error)
	List(ctx context.Context) ([]*model.Terminal, error)
}

// insecureName rejects characters that have no business in a terminal name.
var insecureName = regexp.MustCompile("[%&$#`<>'\"\\{}=]+")

type terminalUC struct {
	terminals repository.TerminalRepository
}

func NewTerminalUseCase(terminals repository.TerminalRepository) *terminalUC {
	return &terminalUC{terminals: terminals}
}

func (u *terminalUC) Create(ctx context.Context, name string) (*model.Terminal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrEmptyTerminalName
	}
	if insecureName.MatchString(name) {
		return nil, domain.ErrInvalidTerminalName
	}

	t := &model.Terminal{
		Name:     name,
		Username: uuid.NewString(),
		Password: uuid.NewString(),
	}
	if err := u.terminals.Save(ctx, nil, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *terminalUC) List(ctx context.Context) ([]*model.Terminal, error) {
	return u.terminals.List(ctx, nil)
}
