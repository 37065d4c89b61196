//go:build windows

package platform

// Current returns the platform the binary was built for.
func Current() Platform {
	return Windows()
}
