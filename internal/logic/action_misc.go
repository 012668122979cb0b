package logic

import (
	"errors"

	"ckan-go/internal/dto"
	"ckan-go/internal/models"
	"ckan-go/internal/repository"
	"ckan-go/internal/service"
	"ckan-go/internal/types"
)

func (r *Registry) userCreate(ctx *types.Context, data types.DataDict) (any, error) {
	if err := r.CheckAccess("user_create", ctx, data); err != nil {
		return nil, err
	}

	clean, err := validate(data, schemaOr(ctx, types.Schema{
		"name":     r.chain("not_empty", "unicode_safe", "name_validator"),
		"password": r.chain("not_empty", "unicode_safe"),
		"email":    r.chain("ignore_missing", "unicode_safe"),
		"fullname": r.chain("ignore_missing", "unicode_safe"),
	}))
	if err != nil {
		return nil, err
	}
	var req dto.RegisterRequest
	if err := decodeInput(clean, &req); err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, fieldError("password", "Your password must be 8 characters or longer")
	}

	auth := service.NewAuthService(repository.NewUserRepository(ctx.Session), nil, nil)
	user, err := auth.Register(&req)
	if errors.Is(err, service.ErrNameTaken) {
		return nil, fieldError("name", err.Error())
	}
	if err != nil {
		return nil, err
	}
	return userDictize(user, true), nil
}

func (r *Registry) userShow(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := requireString(data, "id")
	if err != nil {
		return nil, err
	}
	user, err := repository.NewUserRepository(ctx.Session).GetByIDOrName(id)
	if isRecordNotFound(err) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	if err := r.CheckAccess("user_show", ctx, data); err != nil {
		return nil, err
	}
	return userDictize(user, ctx.UserIsAdmin || ctx.UserID == user.ID), nil
}

func (r *Registry) groupCreate(ctx *types.Context, data types.DataDict) (any, error) {
	if err := r.CheckAccess("group_create", ctx, data); err != nil {
		return nil, err
	}

	clean, err := validate(data, schemaOr(ctx, types.Schema{
		"name":        r.chain("not_empty", "unicode_safe", "name_validator"),
		"title":       r.chain("ignore_missing", "unicode_safe"),
		"description": r.chain("ignore_missing", "unicode_safe"),
	}))
	if err != nil {
		return nil, err
	}
	var in struct {
		Name        string `json:"name"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeInput(clean, &in); err != nil {
		return nil, err
	}

	repo := repository.NewGroupRepository(ctx.Session)
	taken, err := repo.ExistsByName(in.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fieldError("name", "Group name already exists in database")
	}

	group := &models.Group{
		Name:        in.Name,
		Title:       in.Title,
		Description: in.Description,
		State:       models.StateActive,
	}
	if err := repo.Create(group); err != nil {
		return nil, err
	}
	return groupDictize(group), nil
}
