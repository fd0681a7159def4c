package core

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Argument names understood by the resolver returned from NewArgsResolver
const (
	argFilter = "filter"
	argLimit  = "limit"
	argFirst  = "first"
	argSkip   = "skip"
	argOffset = "offset"
	argSort   = "sort"
)

// NewArgsResolver returns a ResolverFn that reads filter, limit (or first),
// skip (or offset) and sort from the field arguments. Limits are defaulted
// and capped using the config. Unknown arguments are ignored.
func NewArgsResolver(conf Config) (ResolverFn, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	defSort, _ := parseSortString(conf.DefaultSort)

	ar := argsResolver{conf: conf, defaultSort: defSort}
	return ar.resolve, nil
}

type argsResolver struct {
	conf        Config
	defaultSort bson.D
}

func (ar argsResolver) resolve(ctx context.Context, p Params) (Pagination, error) {
	var pg Pagination

	if err := ctx.Err(); err != nil {
		return pg, err
	}

	if v, ok := p.Input[argFilter]; ok && v != nil {
		f, err := toFilter(v)
		if err != nil {
			return pg, fmt.Errorf("%s: %w", argFilter, err)
		}
		pg.Filter = f
	}

	limit, err := intArg(p.Input, argLimit, argFirst)
	if err != nil {
		return pg, err
	}
	if limit == 0 {
		limit = ar.conf.DefaultLimit
	}
	if ar.conf.MaxLimit != 0 && limit > ar.conf.MaxLimit {
		limit = ar.conf.MaxLimit
	}
	pg.Limit = limit

	if pg.Skip, err = intArg(p.Input, argSkip, argOffset); err != nil {
		return pg, err
	}

	if v, ok := p.Input[argSort]; ok && v != nil {
		if pg.Sort, err = toSort(v); err != nil {
			return pg, fmt.Errorf("%s: %w", argSort, err)
		}
	}
	if len(pg.Sort) == 0 && p.AllowDefaultSort {
		pg.Sort = ar.defaultSort
	}

	return pg, nil
}

func toFilter(v any) (bson.M, error) {
	switch v := v.(type) {
	case bson.M:
		return v, nil
	case map[string]any:
		return bson.M(v), nil
	case bson.D:
		m := make(bson.M, len(v))
		for _, e := range v {
			m[e.Key] = e.Value
		}
		return m, nil
	default:
		return nil, fmt.Errorf("expected an object: %T", v)
	}
}

// intArg returns the first of names present in args as a non-negative
// integer.
func intArg(args map[string]any, names ...string) (int64, error) {
	for _, name := range names {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		n, err := toInt64(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("%s must not be negative: %d", name, n)
		}
		return n, nil
	}
	return 0, nil
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected an integer: %v", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("expected an integer: %T", v)
	}
}

// toSort accepts "-a,b", a list of such strings or an object of field to
// direction. Object keys are sorted by name since maps carry no order.
func toSort(v any) (bson.D, error) {
	switch v := v.(type) {
	case string:
		return parseSortString(v)

	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string: %T", p)
			}
			parts = append(parts, s)
		}
		return parseSortString(strings.Join(parts, ","))

	case bson.D:
		return v, nil

	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sd bson.D
		for _, k := range keys {
			dir, err := sortDirection(v[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			sd = append(sd, bson.E{Key: k, Value: dir})
		}
		return sd, nil

	default:
		return nil, fmt.Errorf("unsupported sort: %T", v)
	}
}

func sortDirection(v any) (int, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(s) {
		case "asc", "ascending", "1":
			return 1, nil
		case "desc", "descending", "-1":
			return -1, nil
		}
		return 0, fmt.Errorf("invalid sort direction '%s'", s)
	}

	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	switch n {
	case 1:
		return 1, nil
	case -1:
		return -1, nil
	}
	return 0, fmt.Errorf("invalid sort direction %d", n)
}
