// Package server exposes the game's JSON API.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/PikaChewey/Sharpey/internal/metrics"
	"github.com/PikaChewey/Sharpey/internal/model"
	"github.com/PikaChewey/Sharpey/internal/resolver"
	"github.com/PikaChewey/Sharpey/internal/store"
)

// StockResolver is the slice of the resolver the API needs.
type StockResolver interface {
	Resolve(ctx context.Context, symbol string, allowFallback bool) (*model.PriceSeries, error)
	ResolvePair(ctx context.Context, sym1, sym2 string, allowFallback bool) (resolver.Outcome, resolver.Outcome)
}

// SymbolValidator answers whether a ticker may enter the pipeline.
type SymbolValidator interface {
	IsValid(ctx context.Context, symbol string) bool
}

// BenchmarkSource supplies the index figures shown with the leaderboard.
type BenchmarkSource interface {
	Benchmarks() []model.Benchmark
}

// Server wires the handlers to their dependencies.
type Server struct {
	resolver      StockResolver
	validator     SymbolValidator
	store         store.PortfolioStore
	benchmarks    BenchmarkSource
	allowFallback bool
}

func New(r StockResolver, v SymbolValidator, s store.PortfolioStore, b BenchmarkSource, allowFallback bool) *Server {
	return &Server{
		resolver:      r,
		validator:     v,
		store:         s,
		benchmarks:    b,
		allowFallback: allowFallback,
	}
}

// Echo builds the echo instance with middleware and all routes registered.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.Printf("[INFO] %d %s", v.Status, v.URI)
			} else {
				log.Printf("[WARN] %d %s - %v", v.Status, v.URI, v.Error)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", s.health)

	api := e.Group("/api")
	api.GET("/stocks/:symbol", s.getStock)
	api.GET("/validate/:symbol", s.validateSymbol)
	api.GET("/portfolio", s.computePortfolio)
	api.GET("/portfolios", s.listPortfolios)
	api.POST("/portfolios", s.savePortfolio)
	api.GET("/username", s.getUsername)
	api.PUT("/username", s.setUsername)
	api.GET("/benchmarks", s.getBenchmarks)

	return e
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type seriesSummary struct {
	LastPrice     float64 `json:"lastPrice"`
	MinPrice      float64 `json:"minPrice"`
	MaxPrice      float64 `json:"maxPrice"`
	PercentChange float64 `json:"percentChange"`
}

type stockResponse struct {
	*model.PriceSeries
	Summary seriesSummary      `json:"summary"`
	Metrics model.AssetMetrics `json:"metrics"`
}

func summarize(series *model.PriceSeries) seriesSummary {
	min, max := series.MinMaxPrice()
	var last float64
	if series.Len() > 0 {
		last = series.Last().Price
	}
	return seriesSummary{
		LastPrice:     last,
		MinPrice:      min,
		MaxPrice:      max,
		PercentChange: series.PercentChange(),
	}
}

// resolveStatus maps a resolver failure to an HTTP status.
func resolveStatus(err error) int {
	var resErr *resolver.Error
	if errors.As(err, &resErr) && resErr.Kind == resolver.KindInvalidSymbol {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func (s *Server) getStock(c echo.Context) error {
	symbol := c.Param("symbol")

	// ?fallback= overrides the configured default per request.
	allowFallback := s.allowFallback
	if v := c.QueryParam("fallback"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			allowFallback = parsed
		}
	}

	series, err := s.resolver.Resolve(c.Request().Context(), symbol, allowFallback)
	if err != nil {
		var resErr *resolver.Error
		if errors.As(err, &resErr) {
			return c.JSON(resolveStatus(err), resErr)
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, stockResponse{
		PriceSeries: series,
		Summary:     summarize(series),
		Metrics:     metrics.Asset(series),
	})
}

func (s *Server) validateSymbol(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	return c.JSON(http.StatusOK, map[string]any{
		"symbol": symbol,
		"valid":  s.validator.IsValid(c.Request().Context(), symbol),
	})
}

type portfolioResponse struct {
	model.PortfolioMetrics
	UsedFallback bool  `json:"usedFallback"`
	Tested       int64 `json:"portfoliosTested"`
}

func (s *Server) computePortfolio(c echo.Context) error {
	stock1 := c.QueryParam("stock1")
	stock2 := c.QueryParam("stock2")
	weight, err := strconv.Atoi(c.QueryParam("weight"))
	if err != nil || weight < 0 || weight > 100 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "weight must be an integer between 0 and 100",
		})
	}

	out1, out2 := s.resolver.ResolvePair(c.Request().Context(), stock1, stock2, s.allowFallback)
	if out1.Err != nil {
		return c.JSON(resolveStatus(out1.Err), map[string]string{"error": out1.Err.Error()})
	}
	if out2.Err != nil {
		return c.JSON(resolveStatus(out2.Err), map[string]string{"error": out2.Err.Error()})
	}

	result := metrics.Portfolio(out1.Series, out2.Series, float64(weight))

	tested, err := s.store.IncrementTested()
	if err != nil {
		log.Printf("[WARN] tested counter: %v", err)
	}

	return c.JSON(http.StatusOK, portfolioResponse{
		PortfolioMetrics: result,
		UsedFallback:     out1.Series.IsFallback || out2.Series.IsFallback,
		Tested:           tested,
	})
}

type saveRequest struct {
	Username    string  `json:"username"`
	Stock1      string  `json:"stock1"`
	Stock2      string  `json:"stock2"`
	Weight      int     `json:"weight"`
	SharpeRatio float64 `json:"sharpeRatio"`
}

func (s *Server) savePortfolio(c echo.Context) error {
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	req.Stock1 = strings.ToUpper(strings.TrimSpace(req.Stock1))
	req.Stock2 = strings.ToUpper(strings.TrimSpace(req.Stock2))
	if req.Stock1 == "" || req.Stock2 == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "stock1 and stock2 are required"})
	}
	if req.Weight < 0 || req.Weight > 100 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "weight must be between 0 and 100"})
	}

	entry := &model.SavedPortfolio{
		Username:    strings.TrimSpace(req.Username),
		Stock1:      req.Stock1,
		Stock2:      req.Stock2,
		Weight:      req.Weight,
		SharpeRatio: req.SharpeRatio,
	}
	if err := s.store.Save(entry); err != nil {
		log.Printf("[ERROR] save portfolio: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not save portfolio"})
	}
	return c.JSON(http.StatusCreated, entry)
}

func (s *Server) listPortfolios(c echo.Context) error {
	entries, err := s.store.List()
	if err != nil {
		log.Printf("[ERROR] list portfolios: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load leaderboard"})
	}
	tested, err := s.store.Tested()
	if err != nil {
		log.Printf("[WARN] tested counter: %v", err)
	}
	if entries == nil {
		entries = []*model.SavedPortfolio{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"entries":          entries,
		"portfoliosTested": tested,
	})
}

func (s *Server) getUsername(c echo.Context) error {
	name, err := s.store.Username()
	if err != nil {
		log.Printf("[ERROR] read username: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not read username"})
	}
	return c.JSON(http.StatusOK, map[string]string{"username": name})
}

func (s *Server) setUsername(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	if err := s.store.SetUsername(strings.TrimSpace(req.Username)); err != nil {
		log.Printf("[ERROR] set username: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not save username"})
	}
	name, _ := s.store.Username()
	return c.JSON(http.StatusOK, map[string]string{"username": name})
}

func (s *Server) getBenchmarks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.benchmarks.Benchmarks())
}
