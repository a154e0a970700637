package model

import "time"

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:varchar(1000);not null" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	Image       string `gorm:"type:varchar(500)" json:"image"`
	Category    string `gorm:"type:varchar(50);not null;index" json:"category"`
	Stock       int64  `gorm:"not null" json:"stock"`

	// 作成者。作成後は変更不可（所有者のみ更新・削除できる）
	CreatedByID int64 `gorm:"column:created_by_id;not null;index:idx_products_owner_created,priority:1" json:"created_by_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_products_owner_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
