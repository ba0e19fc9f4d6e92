package media

import (
	"errors"
	"log/slog"
	"net/http"

	uploadService "github.com/GnandeepVenigalla/gd25th-backend/internal/services/upload"
	mediaTypes "github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/response"
)

type ListData struct {
	Images []mediaTypes.Record `json:"images"`
	Videos []mediaTypes.Record `json:"videos"`
}

type OrphansData struct {
	Orphans []string `json:"orphans"`
}

// List returns the gallery contents
// @Summary List committed media
// @Description List all images and videos, each newest first
// @Tags media
// @Produce json
// @Success 200 {object} response.Response "Gallery listing"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /api/media [get]
func List(uploads *uploadService.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		images, videos, err := uploads.List(r.Context())
		if err != nil {
			slog.Error("Failed to list media", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to list media")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("", ListData{
			Images: images,
			Videos: videos,
		}))
	}
}

// Orphans reports store objects with no catalog record
// @Summary List uncataloged store objects
// @Description List object keys present in the store but missing from the catalog
// @Tags media
// @Produce json
// @Success 200 {object} response.Response "Orphaned keys"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/media/orphans [get]
func Orphans(uploads *uploadService.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orphans, err := uploads.ReconcileOrphans(r.Context())
		if err != nil {
			slog.Error("Failed to reconcile orphans", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to list orphans")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("", OrphansData{
			Orphans: orphans,
		}))
	}
}
