package model

// AssetMetrics holds annualized risk/return statistics for one series.
type AssetMetrics struct {
	AnnualizedReturn     float64 `json:"annualizedReturn"`
	AnnualizedVolatility float64 `json:"annualizedVolatility"`
	SharpeRatio          float64 `json:"sharpeRatio"`
}

// PortfolioMetrics blends two assets under a weight split.
type PortfolioMetrics struct {
	Stock1      string       `json:"stock1"`
	Stock2      string       `json:"stock2"`
	Weight1     float64      `json:"weight1"` // percentage points, 0..100
	Asset1      AssetMetrics `json:"asset1"`
	Asset2      AssetMetrics `json:"asset2"`
	Correlation float64      `json:"correlation"`

	PortfolioReturn       float64 `json:"portfolioReturn"`
	PortfolioVolatility   float64 `json:"portfolioVolatility"`
	PortfolioSharpeRatio  float64 `json:"portfolioSharpeRatio"`
	PortfolioSortinoRatio float64 `json:"portfolioSortinoRatio"`
}
