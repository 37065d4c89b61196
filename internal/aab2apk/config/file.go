package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file layout. Every field is optional.
type fileConfig struct {
	Output     string        `yaml:"output"`
	Mode       string        `yaml:"mode"`
	Bundletool string        `yaml:"bundletool"`
	Java       string        `yaml:"java"`
	Extractor  string        `yaml:"extractor"`
	Timeout    time.Duration `yaml:"timeout"`
	Signing    fileSigning   `yaml:"signing"`
}

type fileSigning struct {
	Keystore         string `yaml:"keystore"`
	KeystorePassword string `yaml:"keystore_password"`
	KeyAlias         string `yaml:"key_alias"`
	KeyPassword      string `yaml:"key_password"`
}

// loadFile parses path. Relative paths inside the file are resolved against
// the file's own directory.
func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}

	fc := &fileConfig{}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}

	base := filepath.Dir(path)
	fc.Output = resolveAgainst(base, fc.Output)
	fc.Bundletool = resolveAgainst(base, fc.Bundletool)
	fc.Signing.Keystore = resolveAgainst(base, fc.Signing.Keystore)
	if hasSeparator(fc.Java) {
		fc.Java = resolveAgainst(base, fc.Java)
	}
	return fc, nil
}

func resolveAgainst(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// hasSeparator reports whether path names a location rather than a bare
// command looked up on PATH.
func hasSeparator(path string) bool {
	return strings.ContainsAny(path, `/\`)
}
