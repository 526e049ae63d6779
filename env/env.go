package env

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var validations = map[string][]string{}

var v = validator.New()

var validationsMu = &sync.Mutex{}

// RegisterValidation attaches validator tags to an env var; they run on
// every read so misconfiguration is loud rather than silent.
func RegisterValidation(name string, tags ...string) {
	validationsMu.Lock()
	defer validationsMu.Unlock()
	validations[name] = dedupe(append(validations[name], tags...))
}

func check(name string) {
	validationsMu.Lock()
	defer validationsMu.Unlock()
	for _, tag := range validations[name] {
		if err := v.Var(viper.Get(name), tag); err != nil {
			logrus.Errorf("invalid env var %s (tag %s): %s", name, tag, err)
		}
	}
}

func GetString(name string) string {
	check(name)
	return viper.GetString(name)
}

func GetInt(name string) int {
	check(name)
	return viper.GetInt(name)
}

func GetInt64(name string) int64 {
	check(name)
	return viper.GetInt64(name)
}

func GetBool(name string) bool {
	check(name)
	return viper.GetBool(name)
}

func GetStringSlice(name string) []string {
	check(name)
	s := viper.GetStringSlice(name)
	// comma-separated single values are the common deployment form
	if len(s) == 1 && strings.Contains(s[0], ",") {
		parts := strings.Split(s[0], ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return s
}

func dedupe(src []string) []string {
	seen := map[string]bool{}
	out := src[:0]
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
