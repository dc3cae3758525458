package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freight-ops-backend/internal/actions"
	"freight-ops-backend/internal/model"
)

// GetLoads returns every evaluated load in input order.
func (h *Handler) GetLoads(c *gin.Context) {
	v := h.svc.View()
	c.JSON(http.StatusOK, gin.H{"generatedAtISO": v.GeneratedAtISO, "loads": v.Loads})
}

// GetAttention returns red and yellow loads, most urgent first.
func (h *Handler) GetAttention(c *gin.Context) {
	v := h.svc.View()
	c.JSON(http.StatusOK, gin.H{"generatedAtISO": v.GeneratedAtISO, "loads": v.Attention})
}

// GetActions returns the action queue, optionally filtered by ?status=.
func (h *Handler) GetActions(c *gin.Context) {
	v := h.svc.View()
	status := model.ActionStatus(c.Query("status"))
	switch status {
	case "":
		c.JSON(http.StatusOK, gin.H{"generatedAtISO": v.GeneratedAtISO, "actions": v.Actions})
		return
	case model.ActionOpen, model.ActionDone, model.ActionSnoozed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	filtered := []model.BrokerAction{}
	for _, a := range v.Actions {
		if a.Status == status {
			filtered = append(filtered, a)
		}
	}
	c.JSON(http.StatusOK, gin.H{"generatedAtISO": v.GeneratedAtISO, "actions": filtered})
}

// PostActionDone marks an action done.
func (h *Handler) PostActionDone(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"id": id, "state": h.svc.SetActionDone(c.Request.Context(), id)})
}

// PostActionSnooze snoozes an action for thirty minutes.
func (h *Handler) PostActionSnooze(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"id": id, "state": h.svc.SnoozeAction(c.Request.Context(), id)})
}

// PostActionReopen reopens an action.
func (h *Handler) PostActionReopen(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"id": id, "state": h.svc.ReopenAction(c.Request.Context(), id)})
}

// GetNotifications returns the feed with its unread count; ?unread=true hides read entries.
func (h *Handler) GetNotifications(c *gin.Context) {
	v := h.svc.View()
	ns := v.Notifications
	if c.Query("unread") == "true" {
		ns = []model.Notification{}
		for _, n := range v.Notifications {
			if !n.Acked {
				ns = append(ns, n)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": ns, "unread": v.Unread})
}

// PostAckNotification marks one notification read.
func (h *Handler) PostAckNotification(c *gin.Context) {
	if !h.svc.AckNotification(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// PostAckAllNotifications marks the whole feed read.
func (h *Handler) PostAckAllNotifications(c *gin.Context) {
	h.svc.AckAllNotifications(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// GetContacts returns the contact log, filtered by ?loadId= and ?actionId=.
func (h *Handler) GetContacts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"contacts": h.svc.Contacts(c.Request.Context(), c.Query("loadId"), c.Query("actionId"))})
}

type postContactRequest struct {
	ActionID string              `json:"actionId" binding:"required"`
	LoadID   string              `json:"loadId" binding:"required"`
	Method   model.ContactMethod `json:"method" binding:"required"`
}

// PostContact records an outreach event.
func (h *Handler) PostContact(c *gin.Context) {
	var req postContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	entry, err := h.svc.LogContact(c.Request.Context(), req.ActionID, req.LoadID, req.Method)
	if err != nil {
		if errors.Is(err, actions.ErrUnknownMethod) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetLatestContact returns the newest contact for ?actionId= or ?loadId=.
func (h *Handler) GetLatestContact(c *gin.Context) {
	loadID, actionID := c.Query("loadId"), c.Query("actionId")
	if loadID == "" && actionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "loadId or actionId is required"})
		return
	}

	entry, ok := h.svc.LatestContact(c.Request.Context(), loadID, actionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no contact recorded"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// PostRefresh requests an immediate re-evaluation.
func (h *Handler) PostRefresh(c *gin.Context) {
	h.svc.Trigger()
	c.Status(http.StatusAccepted)
}
