package handler

import (
	"errors"
	"net/http"

	"ckan-go/internal/logic"
	"ckan-go/internal/types"

	"github.com/gin-gonic/gin"
)

// ViewHandler 资源视图页面
type ViewHandler struct {
	registry *logic.Registry
}

// NewViewHandler 创建资源视图处理器
func NewViewHandler(registry *logic.Registry) *ViewHandler {
	return &ViewHandler{registry: registry}
}

// Render 渲染视图插件的展示模板
func (h *ViewHandler) Render(c *gin.Context) {
	h.render(c, false)
}

// Edit 渲染视图插件的表单模板
func (h *ViewHandler) Edit(c *gin.Context) {
	h.render(c, true)
}

func (h *ViewHandler) render(c *gin.Context, form bool) {
	ctx := newActionContext(c, h.registry)
	plugin, data, err := h.registry.ViewData(ctx, c.Param("view_id"))
	if err != nil {
		c.String(viewStatus(err), err.Error())
		return
	}

	resource := data["resource"].(types.DataDict)
	pkg := data["package"].(types.DataDict)
	if resource["id"] != c.Param("resource_id") || (pkg["id"] != c.Param("id") && pkg["name"] != c.Param("id")) {
		c.String(http.StatusNotFound, "Resource view not found")
		return
	}

	tmpl := plugin.ViewTemplate(ctx, data)
	if form {
		tmpl = plugin.FormTemplate(ctx, data)
	}
	c.HTML(http.StatusOK, tmpl, data)
}

func viewStatus(err error) int {
	var (
		notFound      *logic.NotFound
		notAuthorized *logic.NotAuthorized
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &notAuthorized):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
