package bridge

import (
	"context"
)

// ErrCodeUserCanceled is the purchase SDK's error code for a user-cancelled flow.
const ErrCodeUserCanceled = "E_USER_CANCELED"

type purchasePayload struct {
	ItemID   string     `json:"item_id"`
	MemberID flexString `json:"mb_id"`
}

type purchaseSuccess struct {
	MemberID      string `json:"mb_id"`
	ItemID        string `json:"item_id"`
	TransactionID string `json:"transaction_id"`
	Platform      string `json:"platform"`
}

type purchaseFailure struct {
	MemberID string `json:"mb_id"`
	Reason   string `json:"reason"` // "cancel" or "error"
}

func (b *Bridge) handleRequestPurchase(ctx context.Context, msg *Message) error {
	var p purchasePayload
	if err := msg.DecodeValue(&p); err != nil {
		return err
	}
	b.session.ActiveMemberID = p.MemberID.String()

	if err := b.caps.Purchases.RequestPurchase(ctx, p.ItemID); err != nil {
		b.logger.Error("purchase_request_failed", "item_id", p.ItemID, "error", err.Error())
		b.emit(CmdRequestPurchase.Fail(), purchaseFailure{MemberID: b.session.ActiveMemberID, Reason: "error"})
	}
	return nil
}

// PurchaseUpdated handles a completed store transaction: the purchase is
// finished as consumable, recorded, and reported to the content.
func (b *Bridge) PurchaseUpdated(ctx context.Context, p Purchase) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.Receipt == "" {
		b.logger.Warn("purchase_without_receipt", "product_id", p.ProductID)
		return
	}
	if err := b.caps.Purchases.FinishTransaction(ctx, p); err != nil {
		b.logger.Error("purchase_ack_failed",
			"product_id", p.ProductID,
			"transaction_id", p.TransactionID,
			"error", err.Error(),
		)
		return
	}

	memberID := b.session.ActiveMemberID
	if b.receipts != nil {
		if err := b.receipts.Record(ctx, memberID, p); err != nil {
			b.logger.Error("receipt_record_failed", "transaction_id", p.TransactionID, "error", err.Error())
		}
	}

	b.emit(CmdRequestPurchase.Success(), purchaseSuccess{
		MemberID:      memberID,
		ItemID:        p.ProductID,
		TransactionID: p.TransactionID,
		Platform:      p.Platform,
	})
}

// PurchaseFailed handles the purchase SDK's error callback.
func (b *Bridge) PurchaseFailed(ctx context.Context, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	reason := "error"
	if code == ErrCodeUserCanceled {
		reason = "cancel"
	}
	b.logger.Info("purchase_failed", "code", code, "reason", reason)
	b.emit(CmdRequestPurchase.Fail(), purchaseFailure{MemberID: b.session.ActiveMemberID, Reason: reason})
}
