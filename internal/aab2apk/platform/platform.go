package platform

import (
	"path/filepath"
	"strings"
)

// Platform captures the per-OS conventions the converter relies on: executable
// names, well-known install locations and where temporary files go.
type Platform struct {
	Name              string
	PathListSeparator string
	JavaExe           string
	ApksignerExe      string

	bundletoolDirs func(env Env) []string
	tempRoot       func(env Env) string
}

const BundletoolJar = "bundletool.jar"

// Unix describes Linux, macOS and the BSDs.
func Unix() Platform {
	return Platform{
		Name:              "unix",
		PathListSeparator: ":",
		JavaExe:           "java",
		ApksignerExe:      "apksigner",
		bundletoolDirs: func(env Env) []string {
			var dirs []string
			if home := env.Getenv("HOME"); home != "" {
				dirs = append(dirs,
					filepath.Join(home, ".local", "bin"),
					filepath.Join(home, ".bundletool"),
				)
			}
			return append(dirs, "/usr/local/bin", "/opt/bundletool")
		},
		tempRoot: func(env Env) string {
			for _, key := range []string{"TMPDIR", "TMP"} {
				if v := env.Getenv(key); v != "" {
					return v
				}
			}
			return "/tmp"
		},
	}
}

// Windows follows the %LOCALAPPDATA% / %APPDATA% conventions.
func Windows() Platform {
	return Platform{
		Name:              "windows",
		PathListSeparator: ";",
		JavaExe:           "java.exe",
		ApksignerExe:      "apksigner.bat",
		bundletoolDirs: func(env Env) []string {
			var dirs []string
			for _, key := range []string{"LOCALAPPDATA", "APPDATA"} {
				if v := env.Getenv(key); v != "" {
					dirs = append(dirs, filepath.Join(v, "bundletool"))
				}
			}
			return dirs
		},
		// Same order GetTempPath uses.
		tempRoot: func(env Env) string {
			for _, key := range []string{"TMP", "TEMP"} {
				if v := env.Getenv(key); v != "" {
					return v
				}
			}
			if profile := env.Getenv("USERPROFILE"); profile != "" {
				return filepath.Join(profile, "AppData", "Local", "Temp")
			}
			return `C:\Temp`
		},
	}
}

// BundletoolCandidates lists the conventional bundletool.jar locations, in search order.
func (p Platform) BundletoolCandidates(env Env) []string {
	if p.bundletoolDirs == nil {
		return nil
	}
	dirs := p.bundletoolDirs(env)
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, filepath.Join(d, BundletoolJar))
	}
	return out
}

// TempRoot returns the directory temporary workspaces are created under.
func (p Platform) TempRoot(env Env) string {
	if p.tempRoot == nil {
		return Unix().tempRoot(env)
	}
	return p.tempRoot(env)
}

// SplitPathList splits a PATH-style value on the platform separator, dropping empty entries.
func (p Platform) SplitPathList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, p.PathListSeparator)
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p Platform) IsWindows() bool {
	return p.Name == "windows"
}
