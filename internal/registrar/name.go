package registrar

import "regexp"

// componentNamePattern is PascalCase: one or more segments of an uppercase
// letter followed by at least one lowercase letter.
var componentNamePattern = regexp.MustCompile(`^[A-Z][a-z]+(?:[A-Z][a-z]+)*$`)

// IsComponentName reports whether name may be registered as an async component.
func IsComponentName(name string) bool {
	return componentNamePattern.MatchString(name)
}
