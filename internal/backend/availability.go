package backend

import "strings"

// Available returns a comma-separated list of available backends.
func Available() string {
	entries := []string{CPU}
	if Has(CUDA) {
		entries = append(entries, CUDA)
	}
	return strings.Join(entries, ",")
}

// Has reports whether the named backend can run jobs in this build.
func Has(name string) bool {
	switch name {
	case CUDA:
		return cudaEnabled
	default:
		return name == CPU
	}
}
