package dsl

import "strings"

// ParsePath splits a shorthand path into its address part and variant name.
// With two or more dot-separated segments the last one is the variant and the rest,
// re-joined, is the target path; otherwise the whole string is the variant and target is empty.
func ParsePath(path string) (target, variant string) {
	segments := strings.Split(path, ".")
	if len(segments) < 2 {
		return "", path
	}
	return strings.Join(segments[:len(segments)-1], "."), segments[len(segments)-1]
}
