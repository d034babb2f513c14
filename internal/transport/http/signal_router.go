package transporthttp

import (
	"net/http"
	"strconv"

	"finboard/internal/signal"

	"github.com/gin-gonic/gin"
)

// SignalRouter mounts the signal and signal-order link operations.
type SignalRouter struct {
	svc *signal.Service
}

func NewSignalRouter(svc *signal.Service) *SignalRouter {
	return &SignalRouter{svc: svc}
}

// Register mounts the signal routes under the given group.
func (r *SignalRouter) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/signals", r.handleListSignals)
	group.POST("/signals", r.handleCreateSignal)
	group.GET("/signals/:id", r.handleGetSignal)
	group.PUT("/signals/:id/status", r.handleUpdateSignalStatus)
	group.GET("/signals/:id/links", r.handleListLinks)
	group.POST("/signals/:id/links", r.handleCreateLink)
	group.PUT("/links/:id", r.handleUpdateLink)
}

func (r *SignalRouter) handleListSignals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	signals, err := r.svc.ListSignals(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		writeSignalError(c, err)
		return
	}
	if signals == nil {
		signals = []signal.Signal{}
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals})
}

type createSignalRequest struct {
	Instrument string   `json:"instrument"`
	Timeframe  string   `json:"timeframe"`
	Action     string   `json:"action"`
	EntryPrice *float64 `json:"entry_price"`
	StopLoss   *float64 `json:"stop_loss"`
	TakeProfit *float64 `json:"take_profit"`
	Rationale  string   `json:"rationale"`
}

func (r *SignalRouter) handleCreateSignal(c *gin.Context) {
	var req createSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	action, err := signal.ParseAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sig, err := r.svc.CreateSignal(c.Request.Context(), currentUserID(c), signal.NewSignalInput{
		Instrument: req.Instrument,
		Timeframe:  req.Timeframe,
		Action:     action,
		EntryPrice: req.EntryPrice,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Rationale:  req.Rationale,
	})
	if err != nil {
		writeSignalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sig)
}

func (r *SignalRouter) handleGetSignal(c *gin.Context) {
	sig, err := r.svc.GetSignal(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeSignalError(c, err)
		return
	}
	c.JSON(http.StatusOK, sig)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (r *SignalRouter) handleUpdateSignalStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	status, err := signal.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	applied, err := r.svc.UpdateSignalStatus(c.Request.Context(), currentUserID(c), c.Param("id"), status)
	if err != nil {
		writeSignalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

func (r *SignalRouter) handleListLinks(c *gin.Context) {
	links, err := r.svc.ListLinks(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeSignalError(c, err)
		return
	}
	if links == nil {
		links = []signal.Link{}
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

type createLinkRequest struct {
	Instrument string `json:"instrument"`
	Side       string `json:"side"`
	OrderType  string `json:"order_type"`
}

func (r *SignalRouter) handleCreateLink(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	link, err := r.svc.CreateLink(c.Request.Context(), currentUserID(c), signal.NewLinkInput{
		SignalID:   c.Param("id"),
		Instrument: req.Instrument,
		Side:       req.Side,
		OrderType:  req.OrderType,
	})
	if err != nil {
		writeSignalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

type updateLinkRequest struct {
	Status       string  `json:"status"`
	OandaOrderID *string `json:"oanda_order_id"`
	OandaTradeID *string `json:"oanda_trade_id"`
}

func (r *SignalRouter) handleUpdateLink(c *gin.Context) {
	var req updateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	status, err := signal.ParseLinkStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	applied, err := r.svc.UpdateLink(c.Request.Context(), currentUserID(c), c.Param("id"), signal.LinkUpdate{
		Status:       status,
		OandaOrderID: req.OandaOrderID,
		OandaTradeID: req.OandaTradeID,
	})
	if err != nil {
		writeSignalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}
