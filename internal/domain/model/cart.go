package model

import "time"

// 1ユーザーにつきカートは1つ
// 合計は明細から毎回再計算して保存する（派生値）
type Cart struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	TotalAmount int64     `gorm:"not null;default:0" json:"total_amount"`
	TotalItems  int64     `gorm:"not null;default:0" json:"total_items"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
