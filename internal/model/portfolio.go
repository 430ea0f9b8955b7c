package model

import "time"

// SavedPortfolio is one leaderboard entry. Entries are deduplicated by
// the (Stock1, Stock2, Weight) triple; saving the same triple again
// replaces the prior record.
type SavedPortfolio struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Stock1      string    `json:"stock1"`
	Stock2      string    `json:"stock2"`
	Weight      int       `json:"weight"` // percentage allocated to Stock1
	SharpeRatio float64   `json:"sharpeRatio"`
	Date        time.Time `json:"date"`
}

// Benchmark is a market index used for leaderboard comparison. The
// Sharpe ratio starts from a static estimate and is replaced by a live
// figure once a refresh succeeds.
type Benchmark struct {
	Name        string  `json:"name"`
	Ticker      string  `json:"ticker"`
	SharpeRatio float64 `json:"sharpeRatio"`
	Live        bool    `json:"live"`
}
