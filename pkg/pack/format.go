package pack

import (
	"strconv"
	"strings"
)

// packFormats maps the first release of each resource pack format.
var packFormats = []struct {
	version string
	format  int
}{
	{"1.6.1", 1},
	{"1.9", 2},
	{"1.11", 3},
	{"1.13", 4},
	{"1.15", 5},
	{"1.16.2", 6},
	{"1.17", 7},
	{"1.18", 8},
	{"1.19", 9},
	{"1.19.3", 12},
	{"1.19.4", 13},
	{"1.20", 15},
	{"1.20.2", 18},
	{"1.20.3", 22},
	{"1.20.5", 32},
	{"1.21", 34},
	{"1.21.2", 42},
	{"1.21.4", 46},
	{"1.21.5", 55},
}

// PackFormatFor derives pack_format from a Minecraft release such as
// "1.20.1". ok is false for versions it cannot place, including anything
// older than 1.6.1.
func PackFormatFor(version string) (int, bool) {
	v, ok := parseVersion(version)
	if !ok {
		return 0, false
	}
	format := 0
	for _, entry := range packFormats {
		release, _ := parseVersion(entry.version)
		if compareVersions(v, release) < 0 {
			break
		}
		format = entry.format
	}
	return format, format > 0
}

func parseVersion(s string) ([]int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func compareVersions(a, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}
