package manifest

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	versionComponentSeparatorConstant   = "."
	invalidVersionTemplateConstant      = "invalid version %q: %s"
	emptyVersionMessageConstant         = "version is empty"
	emptyComponentMessageConstant       = "empty version component"
	nonNumericComponentTemplateConstant = "component %q is not a non-negative integer"
)

// InvalidVersionError reports text that is not a dot-separated list of non-negative integers.
type InvalidVersionError struct {
	Input  string
	Reason string
}

// Error describes the invalid version.
func (versionError InvalidVersionError) Error() string {
	return fmt.Sprintf(invalidVersionTemplateConstant, versionError.Input, versionError.Reason)
}

// Version is a dot-separated sequence of non-negative integers. The original text is kept for path and URL
// interpolation so "0.1.09" stays "0.1.09".
type Version struct {
	text       string
	components []int
}

// ParseVersion parses text such as "0.1.99".
func ParseVersion(text string) (Version, error) {
	trimmedText := strings.TrimSpace(text)
	if len(trimmedText) == 0 {
		return Version{}, InvalidVersionError{Input: text, Reason: emptyVersionMessageConstant}
	}

	rawComponents := strings.Split(trimmedText, versionComponentSeparatorConstant)
	components := make([]int, 0, len(rawComponents))
	for _, rawComponent := range rawComponents {
		if len(rawComponent) == 0 {
			return Version{}, InvalidVersionError{Input: text, Reason: emptyComponentMessageConstant}
		}
		if !isDecimal(rawComponent) {
			return Version{}, InvalidVersionError{Input: text, Reason: fmt.Sprintf(nonNumericComponentTemplateConstant, rawComponent)}
		}
		componentValue, conversionError := strconv.Atoi(rawComponent)
		if conversionError != nil {
			return Version{}, InvalidVersionError{Input: text, Reason: conversionError.Error()}
		}
		components = append(components, componentValue)
	}

	return Version{text: trimmedText, components: components}, nil
}

// String returns the version as it was written.
func (version Version) String() string {
	return version.text
}

// Components returns a copy of the numeric components.
func (version Version) Components() []int {
	return append([]int(nil), version.components...)
}

// Compare orders versions component-wise. When one version is a prefix of the other the shorter one orders first.
func (version Version) Compare(other Version) int {
	for componentIndex := 0; componentIndex < len(version.components) && componentIndex < len(other.components); componentIndex++ {
		switch {
		case version.components[componentIndex] < other.components[componentIndex]:
			return -1
		case version.components[componentIndex] > other.components[componentIndex]:
			return 1
		}
	}
	switch {
	case len(version.components) < len(other.components):
		return -1
	case len(version.components) > len(other.components):
		return 1
	default:
		return 0
	}
}

func isDecimal(text string) bool {
	for _, character := range text {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}
