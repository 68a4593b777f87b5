// Package receipts keeps a ledger of completed in-app purchases.
package receipts

import (
	"time"

	"coquiz/internal/bridge"
)

type Receipt struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID string    `gorm:"not null;uniqueIndex" json:"transaction_id"`
	MemberID      string    `gorm:"not null;index" json:"mb_id"`
	ProductID     string    `gorm:"not null" json:"product_id"`
	Platform      string    `gorm:"not null" json:"platform"`
	Receipt       string    `gorm:"type:text;not null" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Receipt) TableName() string {
	return "purchase_receipts"
}

func newReceipt(memberID string, p bridge.Purchase) *Receipt {
	return &Receipt{
		TransactionID: p.TransactionID,
		MemberID:      memberID,
		ProductID:     p.ProductID,
		Platform:      p.Platform,
		Receipt:       p.Receipt,
	}
}
