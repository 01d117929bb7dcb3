package groups

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/pkg/response"
)

type CreateGroupDTO struct {
	Name string `json:"name" binding:"required"`
}

type SetDefinitionsDTO struct {
	Definitions []models.MetafieldDefinition `json:"metafields"`
}

type Handler struct {
	svc *Registry
}

func NewHandler(svc *Registry) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the group routes. mutateMW runs on writes only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mutateMW ...gin.HandlerFunc) {
	g := rg.Group("/groups")
	g.GET("", h.list)

	w := g.Group("", mutateMW...)
	w.POST("", h.create)
	w.PUT("/:id/definitions", h.setDefinitions)
	w.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	groups, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, groups)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	group, err := h.svc.Create(c.Request.Context(), dto.Name)
	switch {
	case errors.Is(err, ErrNameRequired):
		response.BadRequest(c, err.Error())
		return
	case errors.Is(err, ErrDuplicateName):
		response.Conflict(c, err.Error())
		return
	case err != nil:
		response.InternalError(c, err)
		return
	}
	response.Created(c, group)
}

func (h *Handler) setDefinitions(c *gin.Context) {
	var dto SetDefinitionsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	for _, d := range dto.Definitions {
		if d.Key == "" || d.Namespace == "" || d.Type.Name == "" {
			response.BadRequest(c, "each metafield needs namespace, key and type.name")
			return
		}
	}
	group, err := h.svc.SetDefinitions(c.Request.Context(), c.Param("id"), dto.Definitions)
	if errors.Is(err, ErrNotFound) {
		response.NotFoundMsg(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, group)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFoundMsg(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
