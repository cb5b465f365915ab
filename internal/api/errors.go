package api

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/drip/internal/editor"
	"github.com/alexanderramin/drip/internal/flow"
	"github.com/alexanderramin/drip/internal/repository"
	"github.com/alexanderramin/drip/internal/service"
	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors onto HTTP status codes. Anything unknown is
// an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, editor.ErrNodeNotFound),
		errors.Is(err, editor.ErrEdgeNotFound),
		errors.Is(err, service.ErrPlanNotDelivered):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoSink):
		return http.StatusNotImplemented
	case errors.Is(err, service.ErrCampaignExists),
		errors.Is(err, editor.ErrDuplicateEdge),
		errors.Is(err, editor.ErrPortOccupied):
		return http.StatusConflict
	case errors.Is(err, flow.ErrInvalidConnection),
		errors.Is(err, editor.ErrSelfLoop),
		errors.Is(err, editor.ErrInvalidPort),
		errors.Is(err, editor.ErrProtectedNode),
		errors.Is(err, editor.ErrNotDroppable),
		errors.Is(err, editor.ErrInvalidAttrs),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrEmptyUpdate),
		errors.Is(err, service.ErrInvalidImport):
		return http.StatusBadRequest
	case errors.Is(err, flow.ErrDisconnectedGraph),
		errors.Is(err, flow.ErrMissingEmail),
		errors.Is(err, flow.ErrConditionWithoutEmail),
		errors.Is(err, flow.ErrCyclicFlow):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
