package util

// PrefixName qualifies name with a dot-separated namespace prefix. An empty prefix leaves
// name as is.
func PrefixName(prefix string, name string) string {
	if len(prefix) > 0 {
		return prefix + "." + name
	}

	return name
}
