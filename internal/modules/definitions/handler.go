package definitions

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/metafields/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/definitions", h.list)
}

func (h *Handler) list(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))
	defs, err := h.svc.List(c.Request.Context(), refresh)
	if err != nil {
		response.BadGateway(c, err)
		return
	}
	response.OK(c, defs)
}
