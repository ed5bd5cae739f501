package delivery

import (
	"net/http"

	"mailroute-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	emailUsecase usecase.EmailUsecase
}

func NewEmailHandler(emailUsecase usecase.EmailUsecase) *EmailHandler {
	return &EmailHandler{
		emailUsecase: emailUsecase,
	}
}

// IngestEmail accepts a raw RFC 2822 message body and stores it. The
// envelope recipient comes from the "recipient" query parameter.
func (h *EmailHandler) IngestEmail(c *gin.Context) {
	accountID := c.GetString("accountID")
	recipient := c.Query("recipient")
	if recipient == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient query parameter is required"})
		return
	}

	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must contain the raw message"})
		return
	}

	email, err := h.emailUsecase.Ingest(accountID, recipient, raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, email)
}

func (h *EmailHandler) GetEmailByID(c *gin.Context) {
	accountID := c.GetString("accountID")
	id := c.Param("id")

	email, err := h.emailUsecase.GetEmail(accountID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if email == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}

	c.JSON(http.StatusOK, email)
}

func (h *EmailHandler) MarkAsRead(c *gin.Context) {
	accountID := c.GetString("accountID")
	id := c.Param("id")
	if err := h.emailUsecase.SetRead(accountID, id, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email marked as read"})
}

func (h *EmailHandler) MarkAsUnread(c *gin.Context) {
	accountID := c.GetString("accountID")
	id := c.Param("id")
	if err := h.emailUsecase.SetRead(accountID, id, false); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email marked as unread"})
}

func (h *EmailHandler) ArchiveEmail(c *gin.Context) {
	accountID := c.GetString("accountID")
	id := c.Param("id")
	if err := h.emailUsecase.SetArchived(accountID, id, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email archived"})
}

func (h *EmailHandler) GetOutcomes(c *gin.Context) {
	accountID := c.GetString("accountID")
	id := c.Param("id")

	outcomes, err := h.emailUsecase.ListOutcomes(accountID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}
