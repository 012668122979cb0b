package logic

import (
	"fmt"

	"ckan-go/internal/models"
	"ckan-go/internal/plugins"
	"ckan-go/internal/repository"
	"ckan-go/internal/types"
)

// ViewPlugin 按视图类型查找已加载的视图插件
func (r *Registry) ViewPlugin(viewType string) (plugins.IResourceView, bool) {
	for _, p := range plugins.Implementing[plugins.IResourceView](r.manager) {
		if p.Info().Name == viewType {
			return p, true
		}
	}
	return nil, false
}

func (r *Registry) resourceViewSchema() types.Schema {
	return types.Schema{
		"resource_id": r.chain("not_empty", "unicode_safe"),
		"view_type":   r.chain("not_empty", "unicode_safe"),
		"title":       r.chain("not_empty", "unicode_safe"),
		"description": r.chain("ignore_missing", "unicode_safe"),
	}
}

func viewInfoDict(info plugins.ViewInfo) types.DataDict {
	return types.DataDict{
		"name":             info.Name,
		"title":            info.Title,
		"icon":             info.Icon,
		"iframed":          info.IFramed,
		"always_available": info.AlwaysAvailable,
		"default_title":    info.DefaultTitle,
	}
}

func (r *Registry) resourceViewCreate(ctx *types.Context, data types.DataDict) (any, error) {
	if err := r.CheckAccess("resource_view_create", ctx, data); err != nil {
		return nil, err
	}

	clean, err := validate(data, r.resourceViewSchema())
	if err != nil {
		return nil, err
	}
	viewType := clean["view_type"].(string)
	plugin, ok := r.ViewPlugin(viewType)
	if !ok {
		return nil, fieldError("view_type", fmt.Sprintf("No plugin found for view_type %s", viewType))
	}

	// 视图插件 schema 中的字段存入 config
	info := plugin.Info()
	extra := types.DataDict{}
	for field := range info.Schema {
		if v, ok := data[field]; ok {
			extra[field] = v
		}
	}
	viewConfig, err := validate(extra, info.Schema)
	if err != nil {
		return nil, err
	}

	res, err := loadResource(ctx, clean["resource_id"].(string))
	if err != nil {
		return nil, err
	}

	view := &models.ResourceView{
		ResourceID: res.ID,
		ViewType:   viewType,
		Title:      clean["title"].(string),
		Config:     models.JSONMap(viewConfig),
	}
	if desc, ok := clean["description"].(string); ok {
		view.Description = desc
	}
	if err := repository.NewResourceViewRepository(ctx.Session).Create(view); err != nil {
		return nil, err
	}
	return resourceViewDictize(view), nil
}

func (r *Registry) resourceViewShow(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	view, err := repository.NewResourceViewRepository(ctx.Session).GetByID(id)
	if isRecordNotFound(err) {
		return nil, notFound("Resource view not found")
	}
	if err != nil {
		return nil, err
	}

	if err := r.CheckAccess("resource_view_show", ctx, data); err != nil {
		return nil, err
	}
	return resourceViewDictize(view), nil
}

// resourceViewList 只返回已加载插件对应的视图
func (r *Registry) resourceViewList(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	res, err := loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx.Resource = res
	if err := r.CheckAccess("resource_view_list", ctx, data); err != nil {
		return nil, err
	}

	views, err := repository.NewResourceViewRepository(ctx.Session).ListByResource(res.ID)
	if err != nil {
		return nil, err
	}
	out := make([]types.DataDict, 0, len(views))
	for i := range views {
		if _, ok := r.ViewPlugin(views[i].ViewType); ok {
			out = append(out, resourceViewDictize(&views[i]))
		}
	}
	return out, nil
}

// resourceViewTypeList 列出视图插件；指定资源时只列出可用于该资源的视图
func (r *Registry) resourceViewTypeList(ctx *types.Context, data types.DataDict) (any, error) {
	if err := r.CheckAccess("resource_view_type_list", ctx, data); err != nil {
		return nil, err
	}

	var viewData types.DataDict
	if id, _ := data["id"].(string); id != "" {
		res, err := loadResource(ctx, id)
		if err != nil {
			return nil, err
		}
		pkg, err := loadPackage(ctx, res.PackageID)
		if err != nil {
			return nil, err
		}
		viewData = types.DataDict{
			"resource": resourceDictize(res),
			"package":  packageDictize(pkg, nil),
		}
	}

	out := make([]types.DataDict, 0)
	for _, p := range plugins.Implementing[plugins.IResourceView](r.manager) {
		info := p.Info()
		if viewData != nil && !info.AlwaysAvailable && !p.CanView(viewData) {
			continue
		}
		out = append(out, viewInfoDict(info))
	}
	return out, nil
}

// ViewData 渲染视图模板所需的数据
func (r *Registry) ViewData(ctx *types.Context, viewID string) (plugins.IResourceView, types.DataDict, error) {
	view, err := r.Call("resource_view_show", ctx, types.DataDict{"id": viewID})
	if err != nil {
		return nil, nil, err
	}
	viewDict := view.(types.DataDict)

	plugin, ok := r.ViewPlugin(viewDict["view_type"].(string))
	if !ok {
		return nil, nil, notFound("View type %s is not available", viewDict["view_type"])
	}

	res, err := r.Call("resource_show", ctx, types.DataDict{"id": viewDict["resource_id"]})
	if err != nil {
		return nil, nil, err
	}
	resDict := res.(types.DataDict)
	pkg, err := r.Call("package_show", ctx, types.DataDict{"id": resDict["package_id"]})
	if err != nil {
		return nil, nil, err
	}

	return plugin, types.DataDict{
		"resource_view": viewDict,
		"resource":      resDict,
		"package":       pkg,
	}, nil
}
