package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"freight-ops-backend/internal/dashboard"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc     *dashboard.Service
	db      *gorm.DB
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(svc *dashboard.Service, db *gorm.DB, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		svc:     svc,
		db:      db,
		webpush: webpushOptions,
	}
}
