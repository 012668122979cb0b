package validators

import (
	"errors"
	"sort"

	"ckan-go/internal/types"
)

// Validate 按 schema 校验数据，返回清洗后的数据和字段错误；schema 外的字段原样保留
func Validate(data types.DataDict, schema types.Schema) (types.DataDict, types.ErrorDict) {
	out := make(types.DataDict, len(data))
	for k, v := range data {
		if _, ok := schema[k]; !ok {
			out[k] = v
		}
	}
	errs := types.ErrorDict{}

	fields := make([]string, 0, len(schema))
	for field := range schema {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value, ok := data[field]
		if !ok {
			value = types.Missing
		}

		keep := true
	chain:
		for _, validator := range schema[field] {
			nv, err := validator(value)
			if err == nil {
				value = nv
				continue
			}

			var stop types.StopOnError
			var invalid *types.Invalid
			switch {
			case errors.As(err, &stop):
				keep = false
			case errors.As(err, &invalid):
				errs[field] = append(errs[field], invalid.Msg)
			default:
				errs[field] = append(errs[field], err.Error())
			}
			break chain
		}

		if keep && !types.IsMissing(value) {
			out[field] = value
		}
	}

	if len(errs) == 0 {
		return out, nil
	}
	return out, errs
}
