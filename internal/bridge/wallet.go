package bridge

import (
	"context"
	"fmt"
)

type walletAddress struct {
	Address string `json:"address"`
}

// Connect and disconnect both open the same wallet modal. The outcome is only
// known when the connection state changes, so WalletPending marks that the
// bridge is waiting for it. A single flag: the most recent request wins.

func (b *Bridge) handleConnectWallet(ctx context.Context, msg *Message) error {
	if b.caps.Wallet.IsConnected(ctx) {
		b.emit(msg.Type.Success(), walletAddress{Address: b.caps.Wallet.Address(ctx)})
		return nil
	}
	if err := b.caps.Wallet.Open(ctx); err != nil {
		b.emit(msg.Type.Fail(), nil)
		return fmt.Errorf("open wallet modal: %w", err)
	}
	b.session.WalletPending = true
	return nil
}

func (b *Bridge) handleDisconnectWallet(ctx context.Context, msg *Message) error {
	if !b.caps.Wallet.IsConnected(ctx) {
		b.emit(msg.Type.Fail(), nil)
		return nil
	}
	if err := b.caps.Wallet.Open(ctx); err != nil {
		b.emit(msg.Type.Fail(), nil)
		return fmt.Errorf("open wallet modal: %w", err)
	}
	b.session.WalletPending = true
	return nil
}

// WalletChanged handles a wallet connection state change. Changes that no
// connect/disconnect request is waiting for are ignored.
func (b *Bridge) WalletChanged(ctx context.Context, address string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.session.WalletPending {
		b.logger.Debug("wallet_change_ignored")
		return
	}
	b.session.WalletPending = false

	if address != "" {
		b.emit(CmdConnectWallet.Success(), walletAddress{Address: address})
		return
	}
	b.emit(CmdDisconnectWallet.Success(), nil)
}
