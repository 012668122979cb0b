package logic

import (
	"errors"

	"ckan-go/internal/logic/validators"
	"ckan-go/internal/plugins"
	"ckan-go/internal/types"

	"gorm.io/gorm"
)

// Version 对外报告的平台版本
const Version = "2.10.0"

func (r *Registry) coreActions() map[string]types.Action {
	return map[string]types.Action{
		"status_show":             r.statusShow,
		"user_create":             r.userCreate,
		"user_show":               r.userShow,
		"package_create":          r.packageCreate,
		"package_show":            r.packageShow,
		"package_list":            r.packageList,
		"package_update":          r.packageUpdate,
		"package_delete":          r.packageDelete,
		"dataset_purge":           r.datasetPurge,
		"resource_create":         r.resourceCreate,
		"resource_show":           r.resourceShow,
		"resource_update":         r.resourceUpdate,
		"resource_delete":         r.resourceDelete,
		"resource_view_create":    r.resourceViewCreate,
		"resource_view_show":      r.resourceViewShow,
		"resource_view_list":      r.resourceViewList,
		"resource_view_type_list": r.resourceViewTypeList,
		"rating_create":           r.ratingCreate,
		"rating_show":             r.ratingShow,
		"group_create":            r.groupCreate,
	}
}

// requireString 取必填字符串参数
func requireString(data types.DataDict, key string) (string, error) {
	s, _ := validators.UnicodeSafe(data[key])
	str, _ := s.(string)
	if str == "" {
		return "", fieldError(key, "Missing value")
	}
	return str, nil
}

// schemaOr 上下文指定的 schema 优先
func schemaOr(ctx *types.Context, def types.Schema) types.Schema {
	if ctx.Schema != nil {
		return ctx.Schema
	}
	return def
}

// validate 校验并返回 ValidationError
func validate(data types.DataDict, schema types.Schema) (types.DataDict, error) {
	out, errs := validators.Validate(data, schema)
	if errs != nil {
		return nil, NewValidationError(errs)
	}
	return out, nil
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func (r *Registry) resourceControllers() []plugins.IResourceController {
	return plugins.Implementing[plugins.IResourceController](r.manager)
}

func (r *Registry) statusShow(ctx *types.Context, data types.DataDict) (any, error) {
	if err := r.CheckAccess("status_show", ctx, data); err != nil {
		return nil, err
	}

	extensions := make([]string, 0)
	for _, p := range r.manager.Plugins() {
		extensions = append(extensions, p.Name())
	}
	return types.DataDict{
		"ckan_version": Version,
		"site_url":     r.opts.SiteURL,
		"extensions":   extensions,
	}, nil
}
