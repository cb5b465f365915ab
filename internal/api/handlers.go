package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/editor"
	"github.com/alexanderramin/drip/internal/importer"
	"github.com/alexanderramin/drip/internal/service"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	campaigns service.CampaignService
	editor    service.EditorService
}

func NewHandler(campaigns service.CampaignService, editor service.EditorService) *Handler {
	return &Handler{campaigns: campaigns, editor: editor}
}

// Register mounts the campaign routes. :ref is a campaign id or name.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.createCampaign)
	rg.GET("", h.listCampaigns)
	rg.POST("/import", h.importCampaign)
	rg.GET("/:ref", h.getCampaign)
	rg.PATCH("/:ref", h.renameCampaign)
	rg.DELETE("/:ref", h.deleteCampaign)
	rg.GET("/:ref/export", h.exportCampaign)

	rg.GET("/:ref/graph", h.graph)
	rg.POST("/:ref/nodes", h.addNode)
	rg.PATCH("/:ref/nodes/:node_id", h.updateNode)
	rg.POST("/:ref/edges", h.connect)
	rg.POST("/:ref/delete", h.applyDelta)
	rg.POST("/:ref/layout", h.layout)
	rg.POST("/:ref/publish", h.publish)
	rg.GET("/:ref/publications", h.publications)
	rg.GET("/:ref/plan", h.deliveredPlan)
}

func (h *Handler) resolve(c *gin.Context) (*domain.Campaign, bool) {
	camp, err := h.campaigns.Resolve(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return camp, true
}

func (h *Handler) createCampaign(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		badRequest(c, "invalid body")
		return
	}
	camp, err := h.campaigns.Create(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "campaign": toCampaignDTO(camp)})
}

func (h *Handler) listCampaigns(c *gin.Context) {
	items, err := h.campaigns.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]campaignDTO, 0, len(items))
	for _, camp := range items {
		out = append(out, toCampaignDTO(camp))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "campaigns": out})
}

func (h *Handler) getCampaign(c *gin.Context) {
	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "campaign": toCampaignDTO(camp)})
}

func (h *Handler) renameCampaign(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		badRequest(c, "invalid body")
		return
	}
	camp, err := h.campaigns.Rename(c.Request.Context(), c.Param("ref"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "campaign": toCampaignDTO(camp)})
}

func (h *Handler) deleteCampaign(c *gin.Context) {
	if err := h.campaigns.Delete(c.Request.Context(), c.Param("ref")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) exportCampaign(c *gin.Context) {
	f, err := h.campaigns.Export(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) importCampaign(c *gin.Context) {
	var f importer.CampaignFile
	if err := c.ShouldBindJSON(&f); err != nil {
		badRequest(c, "invalid body")
		return
	}
	res, err := h.campaigns.Import(c.Request.Context(), &f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ok":         true,
		"campaign":   toCampaignDTO(res.Campaign),
		"node_count": res.NodeCount,
		"edge_count": res.EdgeCount,
	})
}

func (h *Handler) graph(c *gin.Context) {
	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	g, err := h.editor.Graph(c.Request.Context(), camp.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "graph": toGraphDTO(g)})
}

func (h *Handler) addNode(c *gin.Context) {
	var req addNodeReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Kind == "" {
		badRequest(c, "invalid body")
		return
	}
	var pos domain.Position
	switch {
	case req.Position != nil:
		pos = *req.Position
	case req.Screen != nil && req.Viewport != nil:
		pos = req.Viewport.ToLogical(*req.Screen)
	default:
		badRequest(c, "position or screen+viewport is required")
		return
	}

	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	n, err := h.editor.AddNode(c.Request.Context(), camp.ID, req.Kind, pos)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "node": toNodeDTO(*n)})
}

func (h *Handler) updateNode(c *gin.Context) {
	var req updateNodeReq
	if err := c.ShouldBindJSON(&req); err != nil || (req.Attrs == nil && req.Position == nil) {
		badRequest(c, "attrs or position is required")
		return
	}
	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	n, err := h.editor.UpdateNode(c.Request.Context(), camp.ID, c.Param("node_id"), service.NodeUpdate{
		Attrs:    req.Attrs,
		Position: req.Position,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "node": toNodeDTO(*n)})
}

func (h *Handler) connect(c *gin.Context) {
	var req connectReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Source == "" || req.Target == "" {
		badRequest(c, "source and target are required")
		return
	}
	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	e, err := h.editor.Connect(c.Request.Context(), camp.ID, req.Source, req.Port, req.Target)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "edge": toEdgeDTO(*e)})
}

func (h *Handler) applyDelta(c *gin.Context) {
	var d editor.Delta
	if err := c.ShouldBindJSON(&d); err != nil || d.Empty() {
		badRequest(c, "remove_nodes or remove_edges is required")
		return
	}
	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	change, err := h.editor.Delete(c.Request.Context(), camp.ID, d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"removed_nodes": nonNil(change.RemovedNodes),
		"removed_edges": nonNil(change.RemovedEdges),
	})
}

func (h *Handler) layout(c *gin.Context) {
	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	moved, err := h.editor.Layout(c.Request.Context(), camp.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "moved": toNodeDTOs(moved)})
}

func (h *Handler) publish(c *gin.Context) {
	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	res, err := h.editor.Publish(c.Request.Context(), camp.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "publication": toPublicationDTO(res.Publication)})
}

func (h *Handler) publications(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}
	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	pubs, err := h.editor.Publications(c.Request.Context(), camp.ID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]publicationDTO, 0, len(pubs))
	for _, p := range pubs {
		out = append(out, toPublicationDTO(p))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "publications": out})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// deliveredPlan returns the plan exactly as the sink last received it.
func (h *Handler) deliveredPlan(c *gin.Context) {
	camp, ok := h.resolve(c)
	if !ok {
		return
	}
	plan, err := h.editor.DeliveredPlan(c.Request.Context(), camp.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "plan": json.RawMessage(plan)})
}
