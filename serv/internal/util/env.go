package util

import (
	"strings"

	"github.com/spf13/viper"
)

// SetKeyValue sets a config value from an environment style key. The key is
// lower cased and underscores are turned into dots one at a time until a
// known config key is found. Eg. DATABASE_CONNECTION_STRING sets
// database.connection_string. It returns false if no key matched.
func SetKeyValue(vi *viper.Viper, key string, value any) bool {
	k := strings.ToLower(key)
	if vi.IsSet(k) {
		vi.Set(k, value)
		return true
	}

	for i := strings.Count(k, "_"); i > 0; i-- {
		k = strings.Replace(k, "_", ".", 1)
		if vi.IsSet(k) {
			vi.Set(k, value)
			return true
		}
	}
	return false
}
