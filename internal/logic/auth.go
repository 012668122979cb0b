package logic

import (
	"fmt"

	"ckan-go/internal/models"
	"ckan-go/internal/repository"
	"ckan-go/internal/types"
)

// coreAuthFunctions 内置权限函数
func coreAuthFunctions() map[string]types.AuthFunction {
	return map[string]types.AuthFunction{
		"status_show":             authAllow,
		"site_read":               authAllow,
		"sysadmin":                authSysadminOnly,
		"user_create":             authAllow,
		"user_show":               authAllow,
		"package_list":            authAllow,
		"package_show":            authPackageShow,
		"package_create":          authPackageCreate,
		"package_update":          authPackageUpdate,
		"package_delete":          authPackageUpdate,
		"dataset_purge":           authSysadminOnly,
		"resource_show":           authResourceShow,
		"resource_create":         authResourceCreate,
		"resource_update":         authResourceUpdate,
		"resource_delete":         authResourceUpdate,
		"resource_view_list":      authResourceShow,
		"resource_view_show":      authResourceViewShow,
		"resource_view_create":    authResourceViewCreate,
		"resource_view_type_list": authAllow,
		"rating_create":           authAllow,
		"rating_show":             authAllow,
		"group_create":            authGroupCreate,
	}
}

func authAllow(*types.Context, types.DataDict) types.AuthResult {
	return types.Allow()
}

func authSysadminOnly(ctx *types.Context, _ types.DataDict) types.AuthResult {
	return types.Deny(fmt.Sprintf("User %s not authorized to perform this action", displayUser(ctx)))
}

func displayUser(ctx *types.Context) string {
	if ctx.User == "" {
		return "None"
	}
	return ctx.User
}

func stringField(data types.DataDict, keys ...string) string {
	for _, key := range keys {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// authPackage 读取上下文中的数据集，否则按 id 查询
func authPackage(ctx *types.Context, data types.DataDict) *models.Package {
	if pkg, ok := ctx.Package.(*models.Package); ok && pkg != nil {
		return pkg
	}
	ref := stringField(data, "id", "name")
	if ref == "" || ctx.Session == nil {
		return nil
	}
	pkg, err := repository.NewPackageRepository(ctx.Session).GetByIDOrName(ref)
	if err != nil {
		return nil
	}
	return pkg
}

func isCreator(ctx *types.Context, pkg *models.Package) bool {
	return ctx.UserID != "" && pkg.CreatorUserID != nil && *pkg.CreatorUserID == ctx.UserID
}

func authPackageShow(ctx *types.Context, data types.DataDict) types.AuthResult {
	pkg := authPackage(ctx, data)
	if pkg == nil {
		return types.Allow()
	}
	if (pkg.Private || pkg.State != models.StateActive) && !isCreator(ctx, pkg) {
		return types.Deny(fmt.Sprintf("User %s not authorized to read package %s", displayUser(ctx), pkg.ID))
	}
	return types.Allow()
}

func authPackageCreate(ctx *types.Context, _ types.DataDict) types.AuthResult {
	if ctx.IsAnonymous() {
		return types.Deny(fmt.Sprintf("User %s not authorized to create packages", displayUser(ctx)))
	}
	return types.Allow()
}

func authPackageUpdate(ctx *types.Context, data types.DataDict) types.AuthResult {
	pkg := authPackage(ctx, data)
	if pkg == nil {
		return types.Deny("No package found for update")
	}
	if !isCreator(ctx, pkg) {
		return types.Deny(fmt.Sprintf("User %s not authorized to edit package %s", displayUser(ctx), pkg.ID))
	}
	return types.Allow()
}

// authResource 读取上下文中的资源，否则按 id 查询
func authResource(ctx *types.Context, data types.DataDict) *models.Resource {
	if res, ok := ctx.Resource.(*models.Resource); ok && res != nil {
		return res
	}
	id := stringField(data, "id", "resource_id")
	if id == "" || ctx.Session == nil {
		return nil
	}
	res, err := repository.NewResourceRepository(ctx.Session).GetByID(id)
	if err != nil {
		return nil
	}
	return res
}

// delegate 以子上下文调用另一个权限函数
func delegate(ctx *types.Context, name string, data types.DataDict, deny string) types.AuthResult {
	if ctx.Checker == nil {
		return types.Deny(deny)
	}
	sub := *ctx
	sub.Package = nil
	sub.Resource = nil
	if err := ctx.Checker.CheckAccess(name, &sub, data); err != nil {
		return types.Deny(deny)
	}
	return types.Allow()
}

func authResourceShow(ctx *types.Context, data types.DataDict) types.AuthResult {
	res := authResource(ctx, data)
	if res == nil {
		return types.Deny("Resource was not found.")
	}
	return delegate(ctx, "package_show", types.DataDict{"id": res.PackageID},
		fmt.Sprintf("User %s not authorized to read resource %s", displayUser(ctx), res.ID))
}

func authResourceCreate(ctx *types.Context, data types.DataDict) types.AuthResult {
	packageID := stringField(data, "package_id")
	if packageID == "" {
		return types.Deny("No dataset id provided, cannot check auth.")
	}
	return delegate(ctx, "package_update", types.DataDict{"id": packageID},
		fmt.Sprintf("User %s not authorized to create resources on dataset %s", displayUser(ctx), packageID))
}

func authResourceUpdate(ctx *types.Context, data types.DataDict) types.AuthResult {
	res := authResource(ctx, data)
	if res == nil {
		return types.Deny("Resource was not found.")
	}
	return delegate(ctx, "package_update", types.DataDict{"id": res.PackageID},
		fmt.Sprintf("User %s not authorized to update resource %s", displayUser(ctx), res.ID))
}

func authResourceViewShow(ctx *types.Context, data types.DataDict) types.AuthResult {
	id := stringField(data, "id")
	if id == "" || ctx.Session == nil {
		return types.Deny("Resource view not found, cannot check auth.")
	}
	view, err := repository.NewResourceViewRepository(ctx.Session).GetByID(id)
	if err != nil {
		return types.Deny("Resource view not found, cannot check auth.")
	}
	return delegate(ctx, "resource_show", types.DataDict{"id": view.ResourceID},
		fmt.Sprintf("User %s not authorized to read resource view %s", displayUser(ctx), id))
}

func authResourceViewCreate(ctx *types.Context, data types.DataDict) types.AuthResult {
	id := stringField(data, "resource_id")
	return delegate(ctx, "resource_update", types.DataDict{"id": id},
		fmt.Sprintf("User %s not authorized to create views on resource %s", displayUser(ctx), id))
}

func authGroupCreate(ctx *types.Context, _ types.DataDict) types.AuthResult {
	if ctx.IsAnonymous() {
		return types.Deny(fmt.Sprintf("User %s not authorized to create groups", displayUser(ctx)))
	}
	return types.Allow()
}
