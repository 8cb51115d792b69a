// Package web exposes the HTTP API: auth, quotes, trading, portfolio,
// forecasts, tutorials and news, plus an SSE stream of simulated ticks.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/services/auth"
	"github.com/smartinvest/server/internal/services/forecast"
	"github.com/smartinvest/server/internal/services/news"
	"github.com/smartinvest/server/internal/services/portfolio"
	"github.com/smartinvest/server/internal/services/pricer"
	"github.com/smartinvest/server/internal/services/trader"
	"github.com/smartinvest/server/internal/services/tutorial"
)

const (
	shutdownTimeout = 5 * time.Second
	// streamInterval paces the SSE quote feed.
	streamInterval = 2 * time.Second
)

// Deps collects the services the API routes to.
type Deps struct {
	Auth      *auth.Service
	Pricer    *pricer.Simulate
	Trader    *trader.Service
	Portfolio *portfolio.Service
	Forecast  *forecast.Service
	Tutorial  *tutorial.Service
	News      *news.Service
}

type Server struct {
	engine *gin.Engine
	addr   string
	deps   Deps
	logger *zap.Logger
}

func NewServer(addr string, deps Deps, logger *zap.Logger) (*Server, error) {
	if addr == "" {
		return nil, errors.New("listen address is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Auth == nil || deps.Pricer == nil || deps.Trader == nil ||
		deps.Portfolio == nil || deps.Forecast == nil || deps.Tutorial == nil ||
		deps.News == nil {
		return nil, errors.New("all services are required")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		addr:   addr,
		deps:   deps,
		logger: logger,
	}
	s.routes()

	return s, nil
}

func (s *Server) routes() {
	api := s.engine.Group("/api")

	api.GET("/health", s.health)

	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	api.GET("/stocks/search", s.searchStocks)
	api.GET("/stocks/:symbol", s.quote)
	api.GET("/forecast/:symbol", s.forecastSymbol)
	api.GET("/news", s.newsFeed)
	api.GET("/quotes/stream", s.quoteStream)

	api.GET("/tutorials", s.listTutorials)
	api.GET("/tutorials/search", s.searchTutorials)
	api.GET("/tutorials/by-level", s.tutorialsByLevel)
	api.GET("/tutorials/by-category", s.tutorialsByCategory)
	api.GET("/tutorial/:id", s.getTutorial)
	api.GET("/tutorial/:id/quiz", s.getQuiz)

	authed := api.Group("", s.requireAuth)
	authed.GET("/auth/user", s.currentUser)
	authed.POST("/auth/logout", s.logout)
	authed.GET("/trade/preview", s.tradePreview)
	authed.POST("/trade/buy", s.buy)
	authed.POST("/trade/sell", s.sell)
	authed.GET("/portfolio", s.portfolioView)
	authed.GET("/portfolio/stats", s.portfolioStats)
	authed.GET("/transactions", s.transactions)
	authed.POST("/tutorial/:id/quiz", s.submitQuiz)
	authed.POST("/tutorial/:id/exercise", s.submitExercise)
	authed.GET("/tutorials/progress", s.tutorialProgress)
	authed.POST("/tutorials/progress/complete", s.completeTutorial)
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http server shutdown")
	}
	s.logger.Info("http server stopped")
	return <-errCh
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
