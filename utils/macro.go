package utils

import (
	"os"
	"regexp"
	"strings"
)

// Matches $NAME and ${NAME} references. Braced names may contain dots.
var macroRegexp = regexp.MustCompile(`\$([A-Za-z0-9_]+|\{[A-Za-z0-9_.]+\})`)

// EnvVars holds the build-scoped variables used to expand path templates.
type EnvVars map[string]string

// EnvVarsFromOS returns the variables of the current process environment.
func EnvVarsFromOS() EnvVars {
	env := EnvVars{}
	for _, entry := range os.Environ() {
		key, value, found := strings.Cut(entry, "=")
		if found {
			env[key] = value
		}
	}
	return env
}

// Merge returns a copy of env overridden by the values of other.
func (env EnvVars) Merge(other EnvVars) EnvVars {
	merged := make(EnvVars, len(env)+len(other))
	for k, v := range env {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Expand replaces every $NAME or ${NAME} reference in template with its value.
// References to unknown variables are left untouched.
func (env EnvVars) Expand(template string) string {
	if !strings.Contains(template, "$") {
		return template
	}
	return macroRegexp.ReplaceAllStringFunc(template, func(ref string) string {
		name := strings.TrimPrefix(ref, "$")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
		if value, ok := env[name]; ok {
			return value
		}
		return ref
	})
}

// ParseEnvVars parses KEY=VALUE pairs. Entries without a '=' are returned as errors.
func ParseEnvVars(pairs []string) (EnvVars, error) {
	env := EnvVars{}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, &InvalidEnvVarError{Entry: pair}
		}
		env[key] = value
	}
	return env, nil
}
