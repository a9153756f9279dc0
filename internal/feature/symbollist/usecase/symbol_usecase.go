// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"stock_metrics/internal/feature/symbollist/domain/entity"
)

// ErrNoActiveSymbols is returned when the symbol table has no active rows.
var ErrNoActiveSymbols = errors.New("no active symbols registered")

// SymbolRepository abstracts the persistence layer for symbol (stock ticker) data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	Register(ctx context.Context, codes []string) (int, error)
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns all active symbols from the repository.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// Resolve turns the -symbols argument into a symbol list.
// An empty arg selects the active symbols in the database, a path to an
// existing file is parsed with ParseSymbols, anything else is a comma list.
func (u *SymbolUsecase) Resolve(ctx context.Context, arg string) ([]string, error) {
	if arg == "" {
		codes, err := u.repo.ListActiveCodes(ctx)
		if err != nil {
			return nil, fmt.Errorf("list active symbols: %w", err)
		}
		if len(codes) == 0 {
			return nil, ErrNoActiveSymbols
		}
		return codes, nil
	}

	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return ParseSymbolsFile(arg)
	}
	return ParseSymbolsString(arg), nil
}

// Register adds codes as active symbols and returns how many were new.
func (u *SymbolUsecase) Register(ctx context.Context, codes []string) (int, error) {
	return u.repo.Register(ctx, Dedupe(codes))
}
