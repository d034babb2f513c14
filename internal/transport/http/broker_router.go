package transporthttp

import (
	"net/http"
	"strconv"
	"strings"

	"finboard/internal/broker"
	"finboard/internal/config/loader"
	"finboard/internal/gateway/oanda"

	"github.com/gin-gonic/gin"
)

// BrokerRouter mounts the workspace read path and the order/trade mutations.
type BrokerRouter struct {
	svc       *broker.Service
	watchlist *loader.WatchlistLoader
}

func NewBrokerRouter(svc *broker.Service, watchlist *loader.WatchlistLoader) *BrokerRouter {
	return &BrokerRouter{svc: svc, watchlist: watchlist}
}

// Register mounts the broker routes under the given group.
func (r *BrokerRouter) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/workspace", r.handleWorkspace)
	group.GET("/account", r.handleAccount)
	group.GET("/candles", r.handleCandles)
	group.GET("/orders", r.handleOrders)
	group.GET("/pricing", r.handlePricing)
	group.POST("/orders/:id/cancel", r.handleCancelOrder)
	group.POST("/positions/:instrument/close", r.handleClosePosition)
	group.POST("/trades/:id/close", r.handleCloseTrade)
	group.PUT("/trades/:id/risk", r.handleUpdateTradeRisk)
}

func (r *BrokerRouter) handleWorkspace(c *gin.Context) {
	ws, err := r.svc.Workspace(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeBrokerError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (r *BrokerRouter) handleAccount(c *gin.Context) {
	res, err := r.svc.AccountSummary(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeBrokerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account":           res.Account,
		"lastTransactionID": strconv.FormatInt(res.LastTransactionID, 10),
	})
}

func (r *BrokerRouter) handleCandles(c *gin.Context) {
	count, _ := strconv.Atoi(c.Query("count"))
	query := oanda.CandleQuery{
		Instrument:  c.Query("instrument"),
		Granularity: c.Query("granularity"),
		Count:       count,
		Price:       c.Query("price"),
	}
	resp, err := r.svc.Candles(c.Request.Context(), currentUserID(c), query)
	if err != nil {
		writeBrokerError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (r *BrokerRouter) handleOrders(c *gin.Context) {
	orders, err := r.svc.PendingOrders(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeBrokerError(c, err)
		return
	}
	if orders == nil {
		orders = []oanda.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (r *BrokerRouter) handlePricing(c *gin.Context) {
	var instruments []string
	if raw := strings.TrimSpace(c.Query("instruments")); raw != "" {
		instruments = strings.Split(raw, ",")
	} else if r.watchlist != nil {
		instruments = r.watchlist.Snapshot().Instruments
	}
	resp, err := r.svc.Pricing(c.Request.Context(), currentUserID(c), instruments)
	if err != nil {
		writeBrokerError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (r *BrokerRouter) handleCancelOrder(c *gin.Context) {
	raw, err := r.svc.CancelOrder(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeBrokerError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func (r *BrokerRouter) handleClosePosition(c *gin.Context) {
	raw, err := r.svc.ClosePosition(c.Request.Context(), currentUserID(c), c.Param("instrument"))
	if err != nil {
		writeBrokerError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func (r *BrokerRouter) handleCloseTrade(c *gin.Context) {
	raw, err := r.svc.CloseTrade(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeBrokerError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// tradeRiskRequest mirrors oanda.TradeRiskUpdate at the JSON boundary. An
// omitted field and an explicit null decode identically, which matches the
// folded null-vs-absent semantics of the broker payload.
type tradeRiskRequest struct {
	StopLoss             *float64 `json:"stopLoss"`
	TakeProfit           *float64 `json:"takeProfit"`
	TrailingStopDistance *float64 `json:"trailingStopDistance"`
}

func (r *BrokerRouter) handleUpdateTradeRisk(c *gin.Context) {
	var req tradeRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	update := oanda.TradeRiskUpdate{
		StopLoss:             req.StopLoss,
		TakeProfit:           req.TakeProfit,
		TrailingStopDistance: req.TrailingStopDistance,
	}
	raw, err := r.svc.UpdateTradeRisk(c.Request.Context(), currentUserID(c), c.Param("id"), update)
	if err != nil {
		writeBrokerError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
