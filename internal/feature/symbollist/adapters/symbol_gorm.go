// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_metrics/internal/feature/symbollist/domain/entity"
	"stock_metrics/internal/feature/symbollist/usecase"
)

// symbolGorm はSymbolRepositoryインターフェースのgorm実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続で銘柄リポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key, code 順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.active(ctx).Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はsort_key, code 順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.active(ctx).Model(&entity.Symbol{}).Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Register は未登録のコードをアクティブな銘柄として追加します。登録済みの行は変更しません。
// 並び順は引数の順序を既存の最大 sort_key の後ろに続けます。
func (r *symbolGorm) Register(ctx context.Context, codes []string) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	var created int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxKey int
		if err := tx.Model(&entity.Symbol{}).Select("COALESCE(MAX(sort_key), 0)").Scan(&maxKey).Error; err != nil {
			return err
		}
		rows := make([]entity.Symbol, 0, len(codes))
		for i, code := range codes {
			rows = append(rows, entity.Symbol{Code: code, IsActive: true, SortKey: maxKey + i + 1})
		}
		res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).Create(&rows)
		created = res.RowsAffected
		return res.Error
	})
	return int(created), err
}

func (r *symbolGorm) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC")
}
