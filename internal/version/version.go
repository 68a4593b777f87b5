// Package version gates the content behind the minimum app version published
// by the backend.
package version

import (
	"strconv"
	"strings"
)

// Compare compares two dotted version strings component by component.
// Missing components count as 0, as do components that are not numbers,
// so "2.0" == "2.0.0" and "1.10.0" > "1.2.0". Returns -1, 0 or 1.
func Compare(a, b string) int {
	as := components(a)
	bs := components(b)
	n := max(len(as), len(bs))
	for i := 0; i < n; i++ {
		x, y := at(as, i), at(bs, i)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func components(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			n = 0
		}
		out[i] = n
	}
	return out
}

func at(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// Versions is the minimum-version document, one entry per platform.
type Versions struct {
	Android string `json:"android"`
	IOS     string `json:"ios"`
}

// For returns the minimum version for platform ("android" or "ios").
func (v Versions) For(platform string) string {
	if strings.EqualFold(platform, "ios") {
		return v.IOS
	}
	return v.Android
}
