package logic

import (
	"ckan-go/internal/models"
	"ckan-go/internal/repository"
	"ckan-go/internal/types"
)

type packageInput struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Notes     string `json:"notes"`
	URL       string `json:"url"`
	Version   string `json:"version"`
	LicenseID string `json:"license_id"`
	Private   bool   `json:"private"`
}

func (in *packageInput) apply(pkg *models.Package) {
	pkg.Name = in.Name
	pkg.Title = in.Title
	pkg.Notes = in.Notes
	pkg.URL = in.URL
	pkg.Version = in.Version
	pkg.LicenseID = in.LicenseID
	pkg.Private = in.Private
}

func (r *Registry) packageSchema(create bool) types.Schema {
	name := r.chain("not_empty", "unicode_safe", "name_validator")
	if !create {
		name = r.chain("ignore_missing", "unicode_safe", "name_validator")
	}
	return types.Schema{
		"name":       name,
		"title":      r.chain("ignore_missing", "unicode_safe"),
		"notes":      r.chain("ignore_missing", "unicode_safe"),
		"url":        r.chain("ignore_missing", "url_validator"),
		"version":    r.chain("ignore_missing", "unicode_safe"),
		"license_id": r.chain("ignore_missing", "unicode_safe"),
		"private":    r.chain("ignore_missing", "boolean_validator"),
	}
}

// loadPackage 按 id 或名称读取数据集
func loadPackage(ctx *types.Context, ref string) (*models.Package, error) {
	pkg, err := repository.NewPackageRepository(ctx.Session).GetByIDOrName(ref)
	if isRecordNotFound(err) {
		return nil, notFound("Dataset not found")
	}
	return pkg, err
}

func (r *Registry) packageDict(ctx *types.Context, pkg *models.Package) (types.DataDict, error) {
	agg, err := repository.NewRatingRepository(ctx.Session).Aggregate(pkg.ID)
	if err != nil {
		return nil, err
	}
	return packageDictize(pkg, agg), nil
}

func (r *Registry) packageCreate(ctx *types.Context, data types.DataDict) (any, error) {
	if err := r.CheckAccess("package_create", ctx, data); err != nil {
		return nil, err
	}

	clean, err := validate(data, schemaOr(ctx, r.packageSchema(true)))
	if err != nil {
		return nil, err
	}
	var in packageInput
	if err := decodeInput(clean, &in); err != nil {
		return nil, err
	}

	repo := repository.NewPackageRepository(ctx.Session)
	taken, err := repo.ExistsByName(in.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fieldError("name", "That URL is already in use.")
	}

	pkg := &models.Package{State: models.StateActive}
	in.apply(pkg)
	if ctx.UserID != "" {
		creator := ctx.UserID
		pkg.CreatorUserID = &creator
	}
	if err := repo.Create(pkg); err != nil {
		return nil, err
	}

	if ctx.ReturnIDOnly {
		return pkg.ID, nil
	}
	return r.packageDict(ctx, pkg)
}

func (r *Registry) packageShow(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	pkg, err := loadPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx.Package = pkg
	if err := r.CheckAccess("package_show", ctx, data); err != nil {
		return nil, err
	}

	dd, err := r.packageDict(ctx, pkg)
	if err != nil {
		return nil, err
	}
	for _, res := range dd["resources"].([]types.DataDict) {
		for _, p := range r.resourceControllers() {
			p.BeforeShow(res)
		}
	}
	return dd, nil
}

func (r *Registry) packageList(ctx *types.Context, data types.DataDict) (any, error) {
	if err := r.CheckAccess("package_list", ctx, data); err != nil {
		return nil, err
	}

	clean, err := validate(data, types.Schema{
		"offset": r.chain("ignore_missing", "natural_number_validator"),
		"limit":  r.chain("ignore_missing", "natural_number_validator"),
	})
	if err != nil {
		return nil, err
	}
	var page struct {
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	}
	if err := decodeInput(clean, &page); err != nil {
		return nil, err
	}

	return repository.NewPackageRepository(ctx.Session).ListNames(page.Offset, page.Limit)
}

func (r *Registry) packageUpdate(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	pkg, err := loadPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx.Package = pkg
	if err := r.CheckAccess("package_update", ctx, data); err != nil {
		return nil, err
	}

	clean, err := validate(data, schemaOr(ctx, r.packageSchema(false)))
	if err != nil {
		return nil, err
	}
	in := packageInput{
		Name:      pkg.Name,
		Title:     pkg.Title,
		Notes:     pkg.Notes,
		URL:       pkg.URL,
		Version:   pkg.Version,
		LicenseID: pkg.LicenseID,
		Private:   pkg.Private,
	}
	if err := decodeInput(clean, &in); err != nil {
		return nil, err
	}

	repo := repository.NewPackageRepository(ctx.Session)
	if in.Name != pkg.Name {
		taken, err := repo.ExistsByName(in.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fieldError("name", "That URL is already in use.")
		}
	}

	in.apply(pkg)
	if err := repo.Update(pkg); err != nil {
		return nil, err
	}
	return r.packageDict(ctx, pkg)
}

func (r *Registry) packageDelete(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	pkg, err := loadPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx.Package = pkg
	if err := r.CheckAccess("package_delete", ctx, data); err != nil {
		return nil, err
	}

	pkg.State = models.StateDeleted
	return nil, repository.NewPackageRepository(ctx.Session).Update(pkg)
}

// datasetPurge 彻底删除数据集及其资源、评分
func (r *Registry) datasetPurge(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	pkg, err := loadPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx.Package = pkg
	if err := r.CheckAccess("dataset_purge", ctx, data); err != nil {
		return nil, err
	}
	return nil, repository.NewPackageRepository(ctx.Session).Delete(pkg.ID)
}
