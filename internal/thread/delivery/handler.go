package delivery

import (
	"net/http"

	"mailroute-backend/internal/thread/usecase"

	"github.com/gin-gonic/gin"
)

type ThreadHandler struct {
	threaderUsecase usecase.ThreaderUsecase
}

func NewThreadHandler(threaderUsecase usecase.ThreaderUsecase) *ThreadHandler {
	return &ThreadHandler{
		threaderUsecase: threaderUsecase,
	}
}

// GetThread reconstructs the conversation around one stored email.
func (h *ThreadHandler) GetThread(c *gin.Context) {
	accountID := c.GetString("accountID")
	id := c.Param("id")

	thread, err := h.threaderUsecase.BuildThread(accountID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, thread)
}
