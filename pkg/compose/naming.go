package compose

import "strings"

// maxFilenameLength bounds sanitized output names, leaving room for the
// format extension.
const maxFilenameLength = 200

// unsafeChars are replaced with underscores in output names.
const unsafeChars = `<>:"/\|?*` + "\x00"

// SanitizeFilename turns an arbitrary string into a safe filename:
// filesystem-unsafe characters become underscores, repeated separators
// collapse, leading and trailing dots and spaces are trimmed, and the
// result is capped at maxFilenameLength runes.
func SanitizeFilename(name string) string {
	result := name
	for _, c := range unsafeChars {
		result = strings.ReplaceAll(result, string(c), "_")
	}

	for strings.Contains(result, "  ") {
		result = strings.ReplaceAll(result, "  ", " ")
	}
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}

	result = strings.Trim(result, " .")

	if runes := []rune(result); len(runes) > maxFilenameLength {
		result = string(runes[:maxFilenameLength])
	}
	return result
}

// FormatOutputName expands the output naming pattern for a record and
// sanitizes the result. The pattern supports {project_id} and
// {project_name} placeholders.
func FormatOutputName(pattern, id, name string) string {
	result := strings.ReplaceAll(pattern, "{project_id}", id)
	result = strings.ReplaceAll(result, "{project_name}", name)
	return SanitizeFilename(result)
}
