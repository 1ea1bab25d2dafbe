package platform

import "path/filepath"

// Inside an app bundle the binary lives in Contents/MacOS and resources in
// Contents/Resources.
func resourceDirFor(exe string) string {
	return filepath.Join(filepath.Dir(filepath.Dir(exe)), "Resources")
}
