package gpu

import (
	"strconv"
	"strings"
)

// ParseVersion extracts major and minor from a GL_VERSION string such as
// "4.1 Metal - 88", "2.1 Mesa 23.2.1" or "OpenGL ES 3.0 ANGLE".
func ParseVersion(s string) (major, minor int, ok bool) {
	s = strings.TrimPrefix(s, "OpenGL ES ")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, 0, false
	}
	parts := strings.SplitN(fields[0], ".", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// HasVertexArrays reports whether a context of the given GL_VERSION exposes
// vertex array objects in core.
func HasVertexArrays(version string) bool {
	major, _, ok := ParseVersion(version)
	return ok && major >= 3
}
