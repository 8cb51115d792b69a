package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/domain"
	"github.com/smartinvest/server/internal/services/auth"
	"github.com/smartinvest/server/internal/services/pricer"
	"github.com/smartinvest/server/internal/services/trader"
	"github.com/smartinvest/server/internal/services/tutorial"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	account, err := s.deps.Auth.Register(req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	account, token, err := s.deps.Auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) || errors.Is(err, auth.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "account": account})
}

func (s *Server) currentUser(c *gin.Context) {
	account, err := s.deps.Auth.Account(currentUsername(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}

func (s *Server) logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		s.deps.Auth.Logout(token)
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) quote(c *gin.Context) {
	quote, err := s.deps.Pricer.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, pricer.ErrPriceUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "quote lookup failed"})
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (s *Server) searchStocks(c *gin.Context) {
	results := s.deps.Pricer.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type tradeRequest struct {
	Symbol    string `json:"symbol"`
	StockName string `json:"stock_name"`
	Quantity  int64  `json:"quantity"`
	OrderType string `json:"order_type"`
	Duration  string `json:"duration"`
}

func (s *Server) buy(c *gin.Context) {
	s.trade(c, s.deps.Trader.Buy)
}

func (s *Server) sell(c *gin.Context) {
	s.trade(c, s.deps.Trader.Sell)
}

func (s *Server) trade(c *gin.Context, execute func(ctx context.Context, req trader.Request) (domain.Transaction, error)) {
	var req tradeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tx, err := execute(c.Request.Context(), trader.Request{
		Username:  currentUsername(c),
		Symbol:    req.Symbol,
		StockName: req.StockName,
		Quantity:  req.Quantity,
		OrderType: req.OrderType,
		Duration:  req.Duration,
	})
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, pricer.ErrPriceUnavailable):
			status = http.StatusNotFound
		case errors.Is(err, trader.ErrInsufficientFunds),
			errors.Is(err, trader.ErrInsufficientShares):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

func (s *Server) tradePreview(c *gin.Context) {
	symbol := c.Query("symbol")
	quantity, err := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if err != nil || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive integer"})
		return
	}

	total, err := s.deps.Trader.Proceeds(c.Request.Context(), symbol, quantity)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, pricer.ErrPriceUnavailable) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"quantity": quantity,
		"total":    total,
	})
}

func (s *Server) portfolioView(c *gin.Context) {
	view, err := s.deps.Portfolio.View(c.Request.Context(), currentUsername(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "portfolio unavailable"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) portfolioStats(c *gin.Context) {
	view, err := s.deps.Portfolio.View(c.Request.Context(), currentUsername(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "portfolio unavailable"})
		return
	}
	c.JSON(http.StatusOK, view.Summary)
}

func (s *Server) transactions(c *gin.Context) {
	var filter domain.Action
	if raw := c.Query("type"); raw != "" {
		parsed, err := domain.ParseAction(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be BUY or SELL"})
			return
		}
		filter = parsed
	}

	txs, err := s.deps.Portfolio.Transactions(c.Request.Context(), currentUsername(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transactions unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

func (s *Server) forecastSymbol(c *gin.Context) {
	fc, err := s.deps.Forecast.Forecast(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, pricer.ErrPriceUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast unavailable"})
		return
	}
	c.JSON(http.StatusOK, fc)
}

func (s *Server) newsFeed(c *gin.Context) {
	var articles []domain.NewsArticle
	if query := c.Query("q"); query != "" {
		articles = s.deps.News.Search(c.Request.Context(), query)
	} else {
		articles = s.deps.News.Market(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (s *Server) listTutorials(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tutorials": s.deps.Tutorial.All()})
}

func (s *Server) searchTutorials(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tutorials": s.deps.Tutorial.Search(c.Query("q"))})
}

func (s *Server) tutorialsByLevel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tutorials": s.deps.Tutorial.ByLevel(c.Query("level"))})
}

func (s *Server) tutorialsByCategory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tutorials": s.deps.Tutorial.ByCategory(c.Query("category"))})
}

func (s *Server) getTutorial(c *gin.Context) {
	section, err := s.deps.Tutorial.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tutorial not found"})
		return
	}
	c.JSON(http.StatusOK, section)
}

func (s *Server) getQuiz(c *gin.Context) {
	quiz, err := s.deps.Tutorial.Quiz(c.Param("id"))
	if err != nil {
		if errors.Is(err, tutorial.ErrNoQuiz) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tutorial has no quiz"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "tutorial not found"})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

type quizSubmission struct {
	Answers map[int]int `json:"answers"`
}

func (s *Server) submitQuiz(c *gin.Context) {
	var req quizSubmission
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.deps.Tutorial.SubmitQuiz(currentUsername(c), c.Param("id"), req.Answers)
	if err != nil {
		if errors.Is(err, tutorial.ErrTutorialNotFound) || errors.Is(err, tutorial.ErrNoQuiz) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "quiz grading failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type exerciseSubmission struct {
	Answer string `json:"answer"`
}

func (s *Server) submitExercise(c *gin.Context) {
	var req exerciseSubmission
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	correct, err := s.deps.Tutorial.ValidateExercise(c.Param("id"), req.Answer)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"correct": correct})
}

func (s *Server) tutorialProgress(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Tutorial.UserProgress(currentUsername(c)))
}

type completeRequest struct {
	TutorialID string `json:"tutorial_id"`
	Completed  *bool  `json:"completed"`
}

func (s *Server) completeTutorial(c *gin.Context) {
	var req completeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	if err := s.deps.Tutorial.SetCompleted(currentUsername(c), req.TutorialID, completed); err != nil {
		if errors.Is(err, tutorial.ErrTutorialNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tutorial not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "progress update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// quoteStream pushes the full quote board over SSE until the client
// disconnects.
func (s *Server) quoteStream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx := c.Request.Context()
	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	send := func() {
		quotes := make([]domain.Quote, 0)
		for _, symbol := range s.deps.Pricer.Symbols() {
			q, err := s.deps.Pricer.Quote(ctx, symbol)
			if err != nil {
				continue
			}
			quotes = append(quotes, q)
		}
		c.SSEvent("quotes", quotes)
		c.Writer.Flush()
	}

	// initial snapshot so clients render immediately
	send()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("quote stream closed", zap.Error(ctx.Err()))
			return
		case <-ticker.C:
			send()
		}
	}
}
