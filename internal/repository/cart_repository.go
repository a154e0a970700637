package repository

import (
	"context"

	"shopapp/internal/domain/model"
)

type CartRepository interface {
	// 無ければ空のカートを作って返す（totalsはゼロ）
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 合計を再計算した結果を保存
	UpdateTotals(ctx context.Context, cartID int64, totalAmount int64, totalItems int64) error
	// 明細を全削除して合計をゼロに戻す（カート自体は残す）
	Clear(ctx context.Context, cartID int64) error
}
