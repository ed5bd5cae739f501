package delivery

import (
	"net/http"

	"mailroute-backend/internal/dispatch/usecase"

	"github.com/gin-gonic/gin"
)

type DispatchHandler struct {
	pipeline usecase.PipelineUsecase
}

func NewDispatchHandler(pipeline usecase.PipelineUsecase) *DispatchHandler {
	return &DispatchHandler{
		pipeline: pipeline,
	}
}

// RouteEmail triggers the resolve → dispatch → track pipeline for one
// stored email. Repeated calls re-dispatch and re-track.
func (h *DispatchHandler) RouteEmail(c *gin.Context) {
	accountID := c.GetString("accountID")
	id := c.Param("id")

	result, err := h.pipeline.RouteEmail(c.Request.Context(), accountID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
