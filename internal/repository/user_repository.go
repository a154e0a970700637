package repository

import (
	"context"

	"shopapp/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はDBのunique制約で弾く）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。見つからなければ (nil, nil)
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを1件取得する。見つからなければ (nil, nil)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//リセットトークンのダイジェストから1件取得する。見つからなければ (nil, nil)
	FindByResetTokenDigest(ctx context.Context, digest string) (*model.User, error)
	// ユーザー情報の更新=>パスワード再設定・リセットトークンの付与/クリアなど
	Update(ctx context.Context, user *model.User) error
}
