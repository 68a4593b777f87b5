package receipts

import (
	"context"
	"errors"
	"fmt"

	"coquiz/internal/bridge"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Repository handles database operations for purchase receipts
type Repository interface {
	Record(ctx context.Context, memberID string, p bridge.Purchase) error
	FindByTransaction(ctx context.Context, transactionID string) (*Receipt, error)
	ListByMember(ctx context.Context, memberID string, limit int) ([]Receipt, error)
}

var ErrNotFound = errors.New("receipt not found")

// receiptRepository is the GORM implementation of Repository
type receiptRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &receiptRepository{db: db}
}

// Open connects to postgres and migrates the receipts table.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to receipt database: %w", err)
	}
	if err := db.AutoMigrate(&Receipt{}); err != nil {
		return nil, fmt.Errorf("failed to migrate receipts: %w", err)
	}
	return db, nil
}

// Record stores a completed purchase. A transaction seen before is ignored,
// so replayed store callbacks do not duplicate rows.
func (r *receiptRepository) Record(ctx context.Context, memberID string, p bridge.Purchase) error {
	if p.TransactionID == "" {
		return errors.New("transaction id is required")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "transaction_id"}}, DoNothing: true}).
		Create(newReceipt(memberID, p)).Error
}

func (r *receiptRepository) FindByTransaction(ctx context.Context, transactionID string) (*Receipt, error) {
	var receipt Receipt
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) ListByMember(ctx context.Context, memberID string, limit int) ([]Receipt, error) {
	var receipts []Receipt
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Limit(limit).
		Find(&receipts).Error
	return receipts, err
}
