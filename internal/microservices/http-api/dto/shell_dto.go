package dto

import (
	"coquiz/internal/receipts"
	"coquiz/internal/settings"
)

// StatusResponse reports the bridge session to the host shell.
type StatusResponse struct {
	Attached         bool              `json:"attached"`
	Online           bool              `json:"online"`
	AppState         string            `json:"app_state"`
	Settings         settings.Settings `json:"settings"`
	BackgroundTrack  string            `json:"background_track"`
	BackgroundStatus string            `json:"background_status"`
	WalletPending    bool              `json:"wallet_pending"`
	HasPushToken     bool              `json:"has_push_token"`
	HasUserID        bool              `json:"has_user_id"`
}

type ReceiptListResponse struct {
	MemberID string             `json:"mb_id"`
	Receipts []receipts.Receipt `json:"receipts"`
	Count    int                `json:"count"`
}
