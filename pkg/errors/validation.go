package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePageID validates a page identifier for safety and correctness.
// Page ids become route segments and store keys, so the validation rules are
// intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidatePageID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPage, "page id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidPage, "page id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPage, "page id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidPage, "page id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// sectionTypeRegex matches valid section type names: an identifier starting
// with a letter, as produced by the registry's compiled-in entries.
var sectionTypeRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// ValidateSectionType validates a section type name.
// This catches malformed names before a registry lookup; a well-formed name
// that is simply not registered is a content-authoring error, not an input
// error, and is reported separately by the registry.
func ValidateSectionType(typ string) error {
	if typ == "" {
		return New(ErrCodeInvalidInput, "section type cannot be empty")
	}

	if !sectionTypeRegex.MatchString(typ) {
		return New(ErrCodeInvalidInput, "invalid section type name: %q", typ)
	}

	return nil
}

// propNameRegex matches valid property names.
var propNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidatePropName validates a property name for the prop-update path.
func ValidatePropName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidProp, "property name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidProp, "property name too long (max 64 characters)")
	}

	if !propNameRegex.MatchString(name) {
		return New(ErrCodeInvalidProp, "invalid property name: %q", name)
	}

	return nil
}
