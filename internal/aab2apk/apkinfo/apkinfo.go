// Package apkinfo reads identifying metadata from a built APK.
package apkinfo

import (
	"github.com/pkg/errors"
	"github.com/shogo82148/androidbinary/apk"
)

// Info describes an APK's manifest identity.
type Info struct {
	PackageName string `json:"package_name"`
	VersionName string `json:"version_name,omitempty"`
	VersionCode int32  `json:"version_code,omitempty"`
}

// Inspect opens path as an APK and decodes its binary manifest.
func Inspect(path string) (*Info, error) {
	pkg, err := apk.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "inspect %s", path)
	}
	defer pkg.Close()

	info := &Info{PackageName: pkg.PackageName()}
	manifest := pkg.Manifest()

	// Version attributes may be resource references; leave them empty when unresolvable.
	if name, err := manifest.VersionName.String(); err == nil {
		info.VersionName = name
	}
	if code, err := manifest.VersionCode.Int32(); err == nil {
		info.VersionCode = code
	}

	return info, nil
}
