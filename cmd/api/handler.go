package api

import (
	dispatchDelivery "mailroute-backend/internal/dispatch/delivery"
	dispatchUsecase "mailroute-backend/internal/dispatch/usecase"
	emailDelivery "mailroute-backend/internal/email/delivery"
	emailUsecasePkg "mailroute-backend/internal/email/usecase"
	threadDelivery "mailroute-backend/internal/thread/delivery"
	threadUsecase "mailroute-backend/internal/thread/usecase"
	"mailroute-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	engine *gin.Engine
	config *config.Config
}

func NewHandler(emailUc emailUsecasePkg.EmailUsecase, pipelineUc dispatchUsecase.PipelineUsecase, threaderUc threadUsecase.ThreaderUsecase, cfg *config.Config) *Handler {
	engine := gin.Default()

	emailHandler := emailDelivery.NewEmailHandler(emailUc)
	dispatchHandler := dispatchDelivery.NewDispatchHandler(pipelineUc)
	threadHandler := threadDelivery.NewThreadHandler(threaderUc)

	SetupRoutes(engine, emailHandler, dispatchHandler, threadHandler)

	return &Handler{
		engine: engine,
		config: cfg,
	}
}

func (h *Handler) Start(addr string) error {
	return h.engine.Run(addr)
}
