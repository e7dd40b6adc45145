package model

import "time"

// ReceiptRef is the part of a receipt carried into a day log entry.
type ReceiptRef struct {
	ID       string `json:"id"`
	Merchant string `json:"merchant"`
	Total    string `json:"total"`
}

// DaySummary is the contract the day log writer consumes.
type DaySummary struct {
	TotalMs     int64                    `json:"totalMs"`
	PerActivity map[string]ActivityTotal `json:"perActivity"`
	Trips       []TripLeg                `json:"trips"`
	Receipts    []ReceiptRef             `json:"receipts"`
}

// DayLogEntry is the immutable record of one closed day.
type DayLogEntry struct {
	ID          string                   `json:"id"`
	Date        string                   `json:"date"`
	Project     string                   `json:"project"`
	User        string                   `json:"user"`
	TotalMs     int64                    `json:"totalMs"`
	PerActivity map[string]ActivityTotal `json:"perActivity"`
	Trips       []TripLeg                `json:"trips"`
	Receipts    []ReceiptRef             `json:"receipts"`
	CreatedAt   time.Time                `json:"createdAt"`
}
