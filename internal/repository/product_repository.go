package repository

import (
	"context"
	"errors"

	"shopapp/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// emailのunique制約違反
var ErrDuplicateEmail = errors.New("duplicate email")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Search   string // nameの部分一致（大文字小文字は区別しない）
	Category string // 完全一致
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error
}
