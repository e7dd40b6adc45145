package model

import "time"

// ReceiptFields are the structured fields extracted from receipt text.
type ReceiptFields struct {
	Merchant   string `json:"merchant"`
	Date       string `json:"date"`
	VATPercent string `json:"vatPercent"`
	Total      string `json:"total"`
	Notes      string `json:"notes"`
}

// Receipt is a scanned receipt kept for the current user.
type Receipt struct {
	ID        string        `json:"id"`
	Fields    ReceiptFields `json:"fields"`
	RawText   string        `json:"rawText"`
	CreatedAt time.Time     `json:"createdAt"`
}
