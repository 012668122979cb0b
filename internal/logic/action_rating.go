package logic

import (
	"context"
	"errors"

	"ckan-go/internal/logic/validators"
	"ckan-go/internal/repository"
	"ckan-go/internal/service"
	"ckan-go/internal/types"
	"ckan-go/pkg/ratelimit"
)

func (r *Registry) ratingService(ctx *types.Context) *service.RatingService {
	return service.NewRatingService(repository.NewRatingRepository(ctx.Session), r.opts.RatingLimiter)
}

// ratingCreate 提交评分；匿名用户按客户端IP识别
func (r *Registry) ratingCreate(ctx *types.Context, data types.DataDict) (any, error) {
	if err := r.CheckAccess("rating_create", ctx, data); err != nil {
		return nil, err
	}

	ref, _ := data["package"].(string)
	if ref == "" {
		return nil, fieldError("package", `You must supply a package id or name (parameter "package").`)
	}
	raw, ok := data["rating"]
	if !ok || raw == nil || raw == "" {
		return nil, fieldError("rating", `You must supply a rating (parameter "rating").`)
	}
	value, err := validators.RatingValue(raw)
	if err != nil {
		return nil, fieldError("rating", err.Error())
	}

	pkg, err := repository.NewPackageRepository(ctx.Session).GetByIDOrName(ref)
	if isRecordNotFound(err) {
		return nil, notFound("Not found: %q", ref)
	}
	if err != nil {
		return nil, err
	}

	var userID *string
	if ctx.UserID != "" {
		id := ctx.UserID
		userID = &id
	}

	svc := r.ratingService(ctx)
	_, err = svc.Rate(context.Background(), pkg.ID, userID, ctx.IPAddress, value.(float64))
	switch {
	case errors.Is(err, service.ErrAlreadyRated):
		return nil, fieldError("rating", err.Error())
	case errors.Is(err, ratelimit.ErrLimitExceeded):
		return nil, fieldError("rating", "Too many ratings, please try again later")
	case err != nil:
		return nil, err
	}

	agg, err := svc.Summary(pkg.ID)
	if err != nil {
		return nil, err
	}
	return ratingDictize(agg), nil
}

func (r *Registry) ratingShow(ctx *types.Context, data types.DataDict) (any, error) {
	if err := r.CheckAccess("rating_show", ctx, data); err != nil {
		return nil, err
	}

	ref, _ := data["package"].(string)
	if ref == "" {
		return nil, fieldError("package", `You must supply a package id or name (parameter "package").`)
	}
	pkg, err := repository.NewPackageRepository(ctx.Session).GetByIDOrName(ref)
	if isRecordNotFound(err) {
		return nil, notFound("Not found: %q", ref)
	}
	if err != nil {
		return nil, err
	}

	agg, err := r.ratingService(ctx).Summary(pkg.ID)
	if err != nil {
		return nil, err
	}
	return ratingDictize(agg), nil
}
