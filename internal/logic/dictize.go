package logic

import (
	"time"

	"ckan-go/internal/models"
	"ckan-go/internal/types"

	"github.com/mitchellh/mapstructure"
)

// decodeInput 把校验后的数据解码到输入结构体（按 json 标签）
func decodeInput(data types.DataDict, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(data)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000")
}

func packageDictize(pkg *models.Package, agg *models.RatingAggregate) types.DataDict {
	resources := make([]types.DataDict, 0, len(pkg.Resources))
	for i := range pkg.Resources {
		resources = append(resources, resourceDictize(&pkg.Resources[i]))
	}

	dd := types.DataDict{
		"id":                pkg.ID,
		"name":              pkg.Name,
		"title":             pkg.Title,
		"notes":             pkg.Notes,
		"url":               pkg.URL,
		"version":           pkg.Version,
		"license_id":        pkg.LicenseID,
		"private":           pkg.Private,
		"state":             pkg.State,
		"type":              "dataset",
		"creator_user_id":   pkg.CreatorUserID,
		"metadata_created":  formatTime(pkg.MetadataCreated),
		"metadata_modified": formatTime(pkg.MetadataModified),
		"resources":         resources,
		"num_resources":     len(resources),
	}
	if agg != nil {
		dd["ratings_average"] = agg.Average
		dd["ratings_count"] = agg.Count
	}
	return dd
}

func resourceDictize(res *models.Resource) types.DataDict {
	dd := types.DataDict{
		"id":          res.ID,
		"package_id":  res.PackageID,
		"url":         res.URL,
		"format":      res.Format,
		"name":        res.Name,
		"description": res.Description,
		"mimetype":    res.MimeType,
		"size":        nil,
		"position":    res.Position,
		"state":       res.State,
		"created":     formatTime(res.Created),
	}
	if res.Size != nil {
		dd["size"] = *res.Size
	}
	if res.LastModified != nil {
		dd["last_modified"] = formatTime(*res.LastModified)
	} else {
		dd["last_modified"] = nil
	}
	return dd
}

func resourceViewDictize(view *models.ResourceView) types.DataDict {
	dd := types.DataDict{
		"id":          view.ID,
		"resource_id": view.ResourceID,
		"title":       view.Title,
		"description": view.Description,
		"view_type":   view.ViewType,
		"order":       view.Order,
	}
	for k, v := range view.Config {
		dd[k] = v
	}
	return dd
}

func userDictize(user *models.User, includeEmail bool) types.DataDict {
	dd := types.DataDict{
		"id":       user.ID,
		"name":     user.Name,
		"fullname": user.Fullname,
		"sysadmin": user.Sysadmin,
		"state":    user.State,
		"created":  formatTime(user.Created),
	}
	if includeEmail {
		dd["email"] = user.Email
	}
	return dd
}

func groupDictize(group *models.Group) types.DataDict {
	return types.DataDict{
		"id":          group.ID,
		"name":        group.Name,
		"title":       group.Title,
		"description": group.Description,
		"state":       group.State,
		"created":     formatTime(group.Created),
	}
}

func ratingDictize(agg *models.RatingAggregate) types.DataDict {
	return types.DataDict{
		"rating average": agg.Average,
		"rating count":   agg.Count,
	}
}
