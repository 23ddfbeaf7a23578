package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"healthcare-booking-server/internal/middleware"
	"healthcare-booking-server/internal/realtime"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/utils"
)

// NotificationHandler handles a user's notification inbox and its live stream.
type NotificationHandler struct {
	notifications *services.NotificationService
	hub           *realtime.Hub
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *services.NotificationService, hub *realtime.Hub) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub}
}

// MarkAllReadRequest names the user whose inbox is cleared.
type MarkAllReadRequest struct {
	UserID string `json:"userId"`
}

// MarkReadRequest is used by POST /notifications/read.
type MarkReadRequest struct {
	NotificationID string `json:"notificationId"`
}

// GetNotifications returns one page of the user's notifications, newest first.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	page, err := h.notifications.List(
		c.Request.Context(),
		c.Query("userId"),
		utils.QueryInt(c, "page", 1),
		utils.QueryInt(c, "limit", services.DefaultPageLimit),
	)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, pageResponse(page, notificationView))
}

// GetUnreadCount returns the number of unread notifications.
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), c.Query("userId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"count": count})
}

// MarkAllRead flips every unread notification of the user.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	var req MarkAllReadRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID := firstNonEmpty(req.UserID, c.Query("userId"))
	count, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"success": true, "count": count})
}

// MarkAsRead serves both POST /notifications/:id/read and POST /notifications/read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	var req MarkReadRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	id := firstNonEmpty(c.Param("id"), req.NotificationID)
	notification, err := h.notifications.MarkRead(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"success": true, "notification": notification.View()})
}

// DeleteNotification removes a notification.
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	if err := h.notifications.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.NoContent(c)
}

// Stream upgrades to a websocket that receives the user's new notifications.
// An authenticated caller may only subscribe to their own notifications.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := c.Query("userId")
	if callerID, ok := middleware.GetUserIDFromContext(c); ok {
		if userID != "" && userID != callerID {
			utils.Forbidden(c, "You can only subscribe to your own notifications.")
			return
		}
		userID = callerID
	}
	if userID == "" {
		utils.BadRequest(c, "userId is required.")
		return
	}
	if !websocket.IsWebSocketUpgrade(c.Request) {
		utils.BadRequest(c, "Websocket upgrade required.")
		return
	}

	// the upgrader writes its own error response
	if err := h.hub.Serve(c.Writer, c.Request, userID); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
	}
}
