package hdf4

import (
	"fmt"
	"strings"
)

// ParseAttrPath splits an attribute path of the form /group/object@name
// into the object path and the attribute name.
//
// Examples:
//   - "/@File Label #0" -> objectPath="/", attrName="File Label #0"
//   - "/temp@units" -> objectPath="/temp", attrName="units"
func ParseAttrPath(path string) (objectPath, attrName string, err error) {
	if path == "" {
		return "", "", fmt.Errorf("%w: empty attribute path", ErrInvalidPath)
	}

	at := strings.LastIndex(path, "@")
	if at == -1 {
		return "", "", fmt.Errorf("%w: attribute path must contain '@': %s", ErrInvalidPath, path)
	}

	objectPath = path[:at]
	attrName = path[at+1:]
	if attrName == "" {
		return "", "", fmt.Errorf("%w: attribute name cannot be empty: %s", ErrInvalidPath, path)
	}
	return CleanPath(objectPath), attrName, nil
}

// JoinAttrPath creates an attribute path from an object path and an
// attribute name.
func JoinAttrPath(objectPath, attrName string) string {
	if objectPath == "/" {
		return "/@" + attrName
	}
	return objectPath + "@" + attrName
}

// SplitPath splits a path into its components. Leading and trailing
// slashes are ignored and empty components removed.
//
// Examples:
//   - "/" -> []string{}
//   - "/foo/bar" -> []string{"foo", "bar"}
func SplitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CleanPath normalizes a path so it starts with "/" and has no trailing
// slash.
func CleanPath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(path, "/")
}
