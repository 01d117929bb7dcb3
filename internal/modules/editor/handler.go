package editor

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/metafields/internal/middleware"
	"github.com/mx-space/metafields/internal/pkg/response"
	"github.com/mx-space/metafields/internal/pkg/session"
	"github.com/mx-space/metafields/internal/pkg/shopify"
)

type TabDTO struct {
	Index *int `json:"index" binding:"required"`
}

type MetafieldDTO struct {
	Key string `json:"key" binding:"required"`
}

type SearchDTO struct {
	Term string `json:"term"`
}

// PickedEntity is one entity as returned by the resource picker.
type PickedEntity struct {
	ID     string   `json:"id" binding:"required"`
	Title  string   `json:"title"`
	Images []string `json:"images"`
}

type AttachDTO struct {
	ProductID string         `json:"productId" binding:"required"`
	Cancelled bool           `json:"cancelled"`
	Selection []PickedEntity `json:"selection" binding:"dive"`
}

type DetachDTO struct {
	ProductID string `json:"productId" binding:"required"`
	EntityID  string `json:"entityId" binding:"required"`
}

type TextDTO struct {
	ProductID string `json:"productId" binding:"required"`
	Value     string `json:"value"`
}

type SaveTextDTO struct {
	ProductID string `json:"productId" binding:"required"`
}

type SubmitResult struct {
	Report  SubmitReport `json:"report"`
	Session SessionView  `json:"session"`
}

type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

// RegisterRoutes mounts the editor session routes. writeMW wraps the calls
// that reach the Admin API with writes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, writeMW ...gin.HandlerFunc) {
	g := rg.Group("/editor/sessions")
	g.GET("", h.list)
	g.POST("", h.open)
	g.GET("/:sid", h.get)
	g.DELETE("/:sid", h.close)
	g.POST("/:sid/tab", h.switchTab)
	g.POST("/:sid/metafield", h.selectMetafield)
	g.POST("/:sid/search", h.search)
	g.POST("/:sid/next", h.next)
	g.GET("/:sid/picker", h.picker)
	g.POST("/:sid/attach", h.attach)
	g.POST("/:sid/detach", h.detach)
	g.POST("/:sid/text", h.editText)

	w := g.Group("", writeMW...)
	w.POST("/:sid/text/save", h.saveText)
	w.POST("/:sid/submit", h.submit)
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	s, err := h.mgr.Get(middleware.SessionOwner(c), c.Param("sid"))
	if err != nil {
		response.NotFoundMsg(c, "editor session not found")
		return nil, false
	}
	return s, true
}

// fail maps editor errors onto responses. Upstream failures have already
// been logged and toasted by the editor.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTabOutOfRange),
		errors.Is(err, ErrNoActiveMetafield),
		errors.Is(err, ErrNotReference),
		errors.Is(err, ErrNotText),
		errors.Is(err, ErrProductRequired):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNoGroups), errors.Is(err, ErrUnknownMetafield):
		response.NotFoundMsg(c, err.Error())
	case errors.Is(err, session.ErrNotFound):
		response.NotFoundMsg(c, err.Error())
	default:
		response.BadGateway(c, err)
	}
}

func (h *Handler) list(c *gin.Context) {
	response.OK(c, h.mgr.List(middleware.SessionOwner(c)))
}

func (h *Handler) open(c *gin.Context) {
	s, err := h.mgr.Open(c.Request.Context(), middleware.SessionOwner(c))
	if err != nil && s == nil {
		response.InternalError(c, err)
		return
	}
	// A failed first page is reported through the session toast.
	response.Created(c, s.Snapshot())
}

func (h *Handler) get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Editor.EnsureLoaded(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) close(c *gin.Context) {
	if err := h.mgr.Close(middleware.SessionOwner(c), c.Param("sid")); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) switchTab(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var dto TabDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := s.Editor.SwitchTab(c.Request.Context(), *dto.Index); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) selectMetafield(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var dto MetafieldDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := s.Editor.SelectMetafield(dto.Key); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) search(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var dto SearchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := s.Editor.Search(c.Request.Context(), dto.Term); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) next(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Editor.LoadNextPage(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) picker(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	req, err := s.Editor.PickerRequestFor(c.Query("productId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, req)
}

func (h *Handler) attach(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var dto AttachDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res := PickerResult{Cancelled: dto.Cancelled, Selection: make([]Selection, 0, len(dto.Selection))}
	for _, p := range dto.Selection {
		res.Selection = append(res.Selection, selectionFromEntity(shopify.Entity{ID: p.ID, Title: p.Title, Images: p.Images}))
	}
	if err := s.Editor.Attach(dto.ProductID, res); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) detach(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var dto DetachDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := s.Editor.Detach(dto.ProductID, dto.EntityID); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) editText(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var dto TextDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := s.Editor.EditText(dto.ProductID, dto.Value); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) saveText(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var dto SaveTextDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := s.Editor.SaveText(c.Request.Context(), dto.ProductID); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	report, err := s.Editor.Submit(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, SubmitResult{Report: report, Session: s.Snapshot()})
}
