package agg

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dosco/lookahead/core/internal/pipeline"
	"github.com/dosco/lookahead/core/internal/qcode"
	"github.com/dosco/lookahead/core/internal/sdata"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const idField = "id"

// buildProjection appends the $project stage selecting the requested fields
// of ti. A $lookup always yields an array so singular relations are
// unwrapped to their first element.
func buildProjection(b *pipeline.Builder,
	ti *sdata.TypeInfo,
	fields qcode.Fields,
	order []string,
) error {
	var pm pipeline.Projection

	for _, key := range order {
		f := fields.Get(key)
		fm := ti.Fields[f.Name]

		switch {
		case fm != nil && fm.Relation != nil:
			if fm.IsList {
				pm.Set(key, pipeline.IfNull(key, bson.A{}))
			} else {
				pm.Set(key, pipeline.ArrayElemAt(key, 0))
			}

		case fm != nil && fm.Default != nil:
			v, err := defaultValue(fm.Default)
			if err != nil {
				return newError(InvalidDefaultValue, ti.Name, f.Name, err)
			}
			pm.Set(key, pipeline.IfNull(f.Name, v))

		case fm != nil && fm.IsList:
			pm.Set(key, pipeline.IfNull(f.Name, bson.A{}))

		case key != f.Name:
			pm.Set(key, "$"+f.Name)

		default:
			pm.Set(key, 1)
		}
	}

	// id is always needed by callers matching on the returned documents
	pm.Set(idField, 1)

	if len(pm) != 0 {
		b.Project(pm)
	}
	return nil
}

func defaultValue(d *sdata.DefaultValue) (any, error) {
	if !d.HasValue {
		return nil, errors.New("directive has no value")
	}

	switch d.DataType {
	case "Boolean":
		if d.Raw == "false" {
			return false, nil
		}
		return d.Raw != "", nil

	case "Int":
		n, err := strconv.ParseInt(d.Raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not an Int", d.Raw)
		}
		return n, nil

	case "Float":
		n, err := strconv.ParseFloat(d.Raw, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a Float", d.Raw)
		}
		return n, nil

	default:
		return d.Raw, nil
	}
}
