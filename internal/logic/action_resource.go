package logic

import (
	"time"

	"ckan-go/internal/models"
	"ckan-go/internal/repository"
	"ckan-go/internal/types"
)

type resourceInput struct {
	PackageID   string `json:"package_id"`
	URL         string `json:"url"`
	Format      string `json:"format"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimetype"`
	Size        *int64 `json:"size"`
}

func (in *resourceInput) apply(res *models.Resource) {
	res.URL = in.URL
	res.Format = in.Format
	res.Name = in.Name
	res.Description = in.Description
	res.MimeType = in.MimeType
	res.Size = in.Size
}

func (r *Registry) resourceSchema() types.Schema {
	return types.Schema{
		"package_id":  r.chain("not_empty", "unicode_safe"),
		"url":         r.chain("ignore_missing", "unicode_safe"),
		"format":      r.chain("ignore_missing", "unicode_safe"),
		"name":        r.chain("ignore_missing", "unicode_safe"),
		"description": r.chain("ignore_missing", "unicode_safe"),
		"mimetype":    r.chain("ignore_missing", "unicode_safe"),
		"size":        r.chain("ignore_missing", "int_validator"),
	}
}

func loadResource(ctx *types.Context, id string) (*models.Resource, error) {
	res, err := repository.NewResourceRepository(ctx.Session).GetByID(id)
	if isRecordNotFound(err) {
		return nil, notFound("Resource was not found.")
	}
	return res, err
}

func resourceDicts(ctx *types.Context, packageID string) ([]types.DataDict, error) {
	resources, err := repository.NewResourceRepository(ctx.Session).ListByPackage(packageID)
	if err != nil {
		return nil, err
	}
	out := make([]types.DataDict, 0, len(resources))
	for i := range resources {
		out = append(out, resourceDictize(&resources[i]))
	}
	return out, nil
}

func (r *Registry) resourceCreate(ctx *types.Context, data types.DataDict) (any, error) {
	packageID, err := requireString(data, "package_id")
	if err != nil {
		return nil, err
	}
	pkg, err := loadPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if _, ok := data["url"]; !ok {
		data["url"] = ""
	}

	data["package_id"] = pkg.ID
	if err := r.CheckAccess("resource_create", ctx, data); err != nil {
		return nil, err
	}

	for _, p := range r.resourceControllers() {
		p.BeforeCreate(ctx, data)
	}

	clean, err := validate(data, schemaOr(ctx, r.resourceSchema()))
	if err != nil {
		return nil, err
	}
	var in resourceInput
	if err := decodeInput(clean, &in); err != nil {
		return nil, err
	}

	res := &models.Resource{PackageID: pkg.ID, State: models.StateActive}
	in.apply(res)
	if err := repository.NewResourceRepository(ctx.Session).Create(res); err != nil {
		return nil, err
	}

	dd := resourceDictize(res)
	for _, p := range r.resourceControllers() {
		p.AfterCreate(ctx, dd)
	}
	return dd, nil
}

func (r *Registry) resourceShow(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	res, err := loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx.Resource = res
	if err := r.CheckAccess("resource_show", ctx, data); err != nil {
		return nil, err
	}

	dd := resourceDictize(res)
	for _, p := range r.resourceControllers() {
		p.BeforeShow(dd)
	}
	return dd, nil
}

func (r *Registry) resourceUpdate(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	res, err := loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx.Resource = res
	if err := r.CheckAccess("resource_update", ctx, data); err != nil {
		return nil, err
	}

	current := resourceDictize(res)
	for _, p := range r.resourceControllers() {
		p.BeforeUpdate(ctx, current, data)
	}

	data["package_id"] = res.PackageID
	clean, err := validate(data, schemaOr(ctx, r.resourceSchema()))
	if err != nil {
		return nil, err
	}
	in := resourceInput{
		URL:         res.URL,
		Format:      res.Format,
		Name:        res.Name,
		Description: res.Description,
		MimeType:    res.MimeType,
		Size:        res.Size,
	}
	if err := decodeInput(clean, &in); err != nil {
		return nil, err
	}

	in.apply(res)
	now := time.Now()
	res.LastModified = &now
	if err := repository.NewResourceRepository(ctx.Session).Update(res); err != nil {
		return nil, err
	}

	dd := resourceDictize(res)
	for _, p := range r.resourceControllers() {
		p.AfterUpdate(ctx, dd)
	}
	return dd, nil
}

func (r *Registry) resourceDelete(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	res, err := loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx.Resource = res
	if err := r.CheckAccess("resource_delete", ctx, data); err != nil {
		return nil, err
	}

	resources, err := resourceDicts(ctx, res.PackageID)
	if err != nil {
		return nil, err
	}
	for _, p := range r.resourceControllers() {
		p.BeforeDelete(ctx, data, resources)
	}

	res.State = models.StateDeleted
	if err := repository.NewResourceRepository(ctx.Session).Update(res); err != nil {
		return nil, err
	}

	remaining, err := resourceDicts(ctx, res.PackageID)
	if err != nil {
		return nil, err
	}
	for _, p := range r.resourceControllers() {
		p.AfterDelete(ctx, remaining)
	}
	return nil, nil
}
