package model

import "time"

// カートの明細
// 追加時点の価格・名前・画像を必ずスナップショット保存。
// 後から商品が変わっても明細は更新しない。
type CartItem struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID        int64     `gorm:"not null;index" json:"cart_id"`
	ProductID     int64     `gorm:"not null;index" json:"product_id"`
	Quantity      int64     `gorm:"not null" json:"quantity"`
	PriceSnapshot int64     `gorm:"not null;column:price_snapshot" json:"price_snapshot"`
	NameSnapshot  string    `gorm:"not null;column:name_snapshot" json:"name_snapshot"`
	ImageSnapshot string    `gorm:"column:image_snapshot" json:"image_snapshot"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
