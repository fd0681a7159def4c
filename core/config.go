package core

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Configuration for the aggregation compiler
type Config struct {
	// MaxDepth bounds how deep relations may be nested in a single query.
	// Defaults to 16.
	MaxDepth int `mapstructure:"max_depth" json:"max_depth" yaml:"max_depth" jsonschema:"title=Max Relation Depth,default=16"`

	// DefaultLimit is applied to list fields requested without a limit
	DefaultLimit int64 `mapstructure:"default_limit" json:"default_limit" yaml:"default_limit" jsonschema:"title=Default Document Limit,default=20"`

	// MaxLimit caps any requested limit, zero means no cap
	MaxLimit int64 `mapstructure:"max_limit" json:"max_limit" yaml:"max_limit" jsonschema:"title=Max Document Limit"`

	// DefaultSort is used when a list is requested without a sort and the
	// caller allows a default. Eg. "-createdAt,title"
	DefaultSort string `mapstructure:"default_sort" json:"default_sort" yaml:"default_sort" jsonschema:"title=Default Sort,example=-createdAt"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative: %d", c.MaxDepth)
	}
	if c.DefaultLimit < 0 {
		return fmt.Errorf("default_limit must not be negative: %d", c.DefaultLimit)
	}
	if c.MaxLimit < 0 {
		return fmt.Errorf("max_limit must not be negative: %d", c.MaxLimit)
	}
	if c.MaxLimit != 0 && c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default_limit (%d) is above max_limit (%d)", c.DefaultLimit, c.MaxLimit)
	}
	if _, err := parseSortString(c.DefaultSort); err != nil {
		return fmt.Errorf("default_sort: %w", err)
	}
	return nil
}

// parseSortString parses a comma separated list of field names into a sort
// document. A leading '-' sorts descending, a leading '+' is ignored.
func parseSortString(s string) (bson.D, error) {
	var sort bson.D
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		dir := 1
		switch p[0] {
		case '-':
			dir = -1
			p = p[1:]
		case '+':
			p = p[1:]
		}
		if p == "" {
			return nil, fmt.Errorf("empty field name in '%s'", s)
		}
		sort = append(sort, bson.E{Key: p, Value: dir})
	}
	return sort, nil
}
