package httphandlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dathao-chona/SocialMine-Z/internal/interfaces"
	"github.com/dathao-chona/SocialMine-Z/internal/mining"
	"github.com/gin-gonic/gin"
)

// MiningController is the workflow surface the HTTP layer consumes.
type MiningController interface {
	Submit(ctx context.Context, params mining.SubmitParams) (string, error)
	Decrypt(ctx context.Context, recordID string) (*uint64, error)
	Refresh(ctx context.Context) (*mining.Snapshot, error)
	CheckAvailability(ctx context.Context) (bool, error)
	Snapshot() *mining.Snapshot
	Notification() mining.Notification
	NotificationHistory() []mining.Notification
	IsConnected() bool
	IsSubmitting() bool
	IsDecrypting(recordID string) bool
	IsAnyDecrypting() bool
	IsRefreshing() bool
}

type HTTPHandler struct {
	controller MiningController
	log        interfaces.ILogger
}

func NewHTTPHandler(controller MiningController, log interfaces.ILogger) *gin.Engine {
	handl := &HTTPHandler{
		controller: controller,
		log:        log,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthcheck", handl.HealthCheck)
	r.GET("/records", handl.GetRecords)
	r.GET("/stats", handl.GetStats)
	r.GET("/leaderboard", handl.GetLeaderboard)
	r.GET("/notification", handl.GetNotification)
	r.GET("/notifications/history", handl.GetNotificationHistory)
	r.GET("/status", handl.GetStatus)
	r.GET("/availability", handl.CheckAvailability)

	r.POST("/records", handl.CreateRecord)
	r.POST("/records/:ID/decrypt", handl.DecryptRecord)
	r.POST("/refresh", handl.Refresh)

	err := r.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	return r
}

func (h *HTTPHandler) HealthCheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *HTTPHandler) GetRecords(ctx *gin.Context) {
	snapshot := h.controller.Snapshot()
	ctx.JSON(http.StatusOK, gin.H{
		"records":     snapshot.Records,
		"fetchErrors": snapshot.FetchErrors,
		"refreshedAt": snapshot.RefreshedAt,
	})
}

func (h *HTTPHandler) GetStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.controller.Snapshot().Stats)
}

func (h *HTTPHandler) GetLeaderboard(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"leaderboard": h.controller.Snapshot().Leaderboard})
}

func (h *HTTPHandler) GetNotification(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.controller.Notification())
}

func (h *HTTPHandler) GetNotificationHistory(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"history": h.controller.NotificationHistory()})
}

// GetStatus reports connection state and per-operation busy flags for
// disabling controls.
func (h *HTTPHandler) GetStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"connected":    h.controller.IsConnected(),
		"isSubmitting": h.controller.IsSubmitting(),
		"isDecrypting": h.controller.IsAnyDecrypting(),
		"isRefreshing": h.controller.IsRefreshing(),
	})
}

func (h *HTTPHandler) CheckAvailability(ctx *gin.Context) {
	available, err := h.controller.CheckAvailability(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *HTTPHandler) CreateRecord(ctx *gin.Context) {
	var params mining.SubmitParams
	if err := ctx.ShouldBindJSON(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recordID, err := h.controller.Submit(ctx, params)
	if err != nil {
		ctx.JSON(submissionStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"id": recordID})
}

func (h *HTTPHandler) DecryptRecord(ctx *gin.Context) {
	recordID := ctx.Param("ID")

	value, err := h.controller.Decrypt(ctx, recordID)
	if err != nil {
		ctx.JSON(submissionStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": recordID, "value": value})
}

func (h *HTTPHandler) Refresh(ctx *gin.Context) {
	snapshot, err := h.controller.Refresh(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"records":     len(snapshot.Records),
		"fetchErrors": snapshot.FetchErrors,
		"refreshedAt": snapshot.RefreshedAt,
	})
}

func submissionStatus(err error) int {
	switch {
	case errors.Is(err, mining.ErrNotConnected):
		return http.StatusUnauthorized
	case errors.Is(err, mining.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, mining.ErrSignerRejected):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
