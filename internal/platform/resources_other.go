//go:build !darwin

package platform

import "path/filepath"

func resourceDirFor(exe string) string {
	return filepath.Dir(exe)
}
