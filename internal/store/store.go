// Package store persists leaderboard entries and the player's session
// settings.
package store

import "github.com/PikaChewey/Sharpey/internal/model"

const (
	// LeaderboardCap is the maximum number of entries kept; saving past
	// the cap evicts the lowest Sharpe ratio.
	LeaderboardCap = 20

	// DefaultUsername is reported until the player picks a name.
	DefaultUsername = "Anonymous"
)

// PortfolioStore is the persistence boundary for the leaderboard, the
// player's username and the portfolios-tested counter.
type PortfolioStore interface {
	// Save inserts the entry, replacing any prior entry with the same
	// (Stock1, Stock2, Weight) triple, and trims the leaderboard to the
	// cap by Sharpe ratio.
	Save(p *model.SavedPortfolio) error
	// List returns the leaderboard sorted by Sharpe ratio, best first.
	List() ([]*model.SavedPortfolio, error)
	Username() (string, error)
	SetUsername(name string) error
	// IncrementTested bumps the portfolios-tested counter and returns
	// the new total.
	IncrementTested() (int64, error)
	Tested() (int64, error)
	Close() error
}
