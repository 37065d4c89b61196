package discovery

import (
	"os"
	"path/filepath"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/platform"
)

// Finder locates bundletool, java and apksigner. Every environment read goes
// through Env so the search can be exercised against a fake environment.
type Finder struct {
	Platform platform.Platform
	Env      platform.Env
	Getwd    func() (string, error)
}

// New returns a Finder for the running OS and process environment.
func New() *Finder {
	return &Finder{
		Platform: platform.Current(),
		Env:      platform.OSEnv{},
		Getwd:    os.Getwd,
	}
}

// Tools is a snapshot of what discovery found. Empty fields were not found.
type Tools struct {
	Java       string
	Bundletool string
	Apksigner  string
}

func (f *Finder) Tools() Tools {
	var t Tools
	t.Java, _ = f.FindJava()
	t.Bundletool, _ = f.FindBundletool()
	t.Apksigner, _ = f.FindApksigner()
	return t
}

// FindBundletool searches the working directory, then the conventional install
// locations, then PATH.
func (f *Finder) FindBundletool() (string, bool) {
	if f.Getwd != nil {
		if cwd, err := f.Getwd(); err == nil {
			for _, candidate := range []string{
				filepath.Join(cwd, platform.BundletoolJar),
				filepath.Join(cwd, "bundletool", platform.BundletoolJar),
			} {
				if fileExists(candidate) {
					return candidate, true
				}
			}
		}
	}

	for _, candidate := range f.Platform.BundletoolCandidates(f.Env) {
		if fileExists(candidate) {
			return candidate, true
		}
	}

	return f.searchPath(platform.BundletoolJar)
}

// FindJava checks $JAVA_HOME/bin before PATH.
func (f *Finder) FindJava() (string, bool) {
	if home := f.Env.Getenv("JAVA_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", f.Platform.JavaExe)
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return f.searchPath(f.Platform.JavaExe)
}

// FindApksigner looks in the newest SDK build-tools directory before PATH.
func (f *Finder) FindApksigner() (string, bool) {
	for _, key := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		root := f.Env.Getenv(key)
		if root == "" {
			continue
		}
		if p, ok := latestBuildTool(filepath.Join(root, "build-tools"), f.Platform.ApksignerExe); ok {
			return p, true
		}
	}
	return f.searchPath(f.Platform.ApksignerExe)
}

// latestBuildTool returns exe from the lexicographically greatest version
// directory that ships it, either under lib/ or at the top level.
func latestBuildTool(base, exe string) (string, bool) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", false
	}

	var bestVersion, bestPath string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, candidate := range []string{
			filepath.Join(base, e.Name(), "lib", exe),
			filepath.Join(base, e.Name(), exe),
		} {
			if !fileExists(candidate) {
				continue
			}
			if bestPath == "" || e.Name() > bestVersion {
				bestVersion, bestPath = e.Name(), candidate
			}
			break
		}
	}

	return bestPath, bestPath != ""
}

func (f *Finder) searchPath(name string) (string, bool) {
	for _, dir := range f.Platform.SplitPathList(f.Env.Getenv("PATH")) {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
