package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const tempPrefix = "aab2apk_"

// maxTempAttempts bounds the numeric suffixes tried when the base name is taken.
const maxTempAttempts = 100

// CreateTempDirectory creates aab2apk_<pid>_<unix> under root. The directory is
// created exclusively; when the name is already in use a _N suffix is added.
func CreateTempDirectory(root string) (string, error) {
	if err := CreateDirectories(root); err != nil {
		return "", errors.Wrap(err, "failed to create temporary directory")
	}

	base := fmt.Sprintf("%s%d_%d", tempPrefix, os.Getpid(), time.Now().Unix())
	name := base
	for i := 1; i <= maxTempAttempts; i++ {
		dir := filepath.Join(root, name)
		err := os.Mkdir(dir, 0700)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", errors.Wrap(err, "failed to create temporary directory")
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}

	return "", errors.Errorf("failed to create temporary directory under %s: names exhausted", root)
}

// RemoveTempDirectory deletes path recursively. Errors are ignored.
func RemoveTempDirectory(path string) {
	if path == "" {
		return
	}
	_ = os.RemoveAll(path)
}
