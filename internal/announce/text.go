// Package announce turns file names into spoken announcements using a
// text-to-speech service.
package announce

import (
	"path/filepath"
	"strings"
)

// Text returns the words spoken before a file: its base name with every
// underscore read as a space and a trailing ".mp3" dropped.
//
//	Text("/pods/my_show_ep1.mp3") == "my show ep1"
//	Text("a.b_c.mp3")             == "a.b c"
//
// Text is idempotent on names that contain neither.
func Text(name string) string {
	if name == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(name), ".mp3")
	return strings.ReplaceAll(base, "_", " ")
}
