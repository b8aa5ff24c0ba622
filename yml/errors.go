package yml

import (
	"regexp"
	"strconv"
	"strings"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)(?::\s*column (\d+))?:\s*(.*)`)

// ErrorPosition extracts the line and column reported by a yaml.v3 parse error,
// for example "yaml: line 3: mapping values are not allowed in this context".
// The column defaults to 1 when the error does not carry one. ok is false when no position is present.
func ErrorPosition(err error) (line, column int, message string, ok bool) {
	if err == nil {
		return 0, 0, "", false
	}

	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	msg = strings.TrimPrefix(msg, "unmarshal errors:\n")

	m := yamlLineRegex.FindStringSubmatch(msg)
	if m == nil {
		return 0, 0, msg, false
	}

	line, _ = strconv.Atoi(m[1])
	column = 1
	if m[2] != "" {
		column, _ = strconv.Atoi(m[2])
	}

	return line, column, strings.TrimSpace(m[3]), true
}
