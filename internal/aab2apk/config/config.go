// Package config turns command-line flags, environment variables and an
// optional YAML file into a validated conversion request.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/extract"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/fsutil"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/platform"
)

const DefaultOutputDir = "./dist"

// Environment variables consulted when the matching flag is not set.
const (
	EnvOutput     = "AAB2APK_OUTPUT"
	EnvBundletool = "AAB2APK_BUNDLETOOL"
	EnvJava       = "AAB2APK_JAVA"
	EnvConfig     = "AAB2APK_CONFIG"
)

const secretEnvPrefix = "env:"

var (
	ErrInputRequired     = errors.New("input AAB file is required")
	ErrInvalidInput      = errors.New("invalid AAB file")
	ErrInvalidKeystore   = errors.New("keystore file does not exist or is empty")
	ErrAliasRequired     = errors.New("key alias is required when signing")
	ErrSecretUnset       = errors.New("environment variable not set")
	ErrBundletoolMissing = errors.New("bundletool.jar not found. Please specify --bundletool or place bundletool.jar in current directory or PATH")
	ErrJavaMissing       = errors.New("java executable not found. Please install Java or specify --java")
)

// Flags holds the raw flag values bound by BindFlags.
type Flags struct {
	Input            string
	Output           string
	Mode             string
	Keystore         string
	KeystorePassword string
	KeyAlias         string
	KeyPassword      string
	Bundletool       string
	Java             string
	Extractor        string
	ConfigFile       string
	Timeout          time.Duration
	Verbose          bool
	Quiet            bool
	ListTools        bool
	Check            bool
	JSON             bool
	ShowTiming       bool
	NoTUI            bool
}

// BindFlags registers every option on fs and returns their destination.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVarP(&f.Input, "input", "i", "", "Input .aab file path")
	fs.StringVarP(&f.Output, "output", "o", DefaultOutputDir, "Output directory")
	fs.StringVarP(&f.Mode, "mode", "m", string(domain.ModeUniversal), "Output mode: universal or split")
	fs.StringVar(&f.Keystore, "keystore", "", "Keystore file path for signing")
	fs.StringVar(&f.KeystorePassword, "ks-pass", "", "Keystore password (or env:VAR_NAME)")
	fs.StringVar(&f.KeyAlias, "key-alias", "", "Key alias")
	fs.StringVar(&f.KeyPassword, "key-pass", "", "Key password (or env:VAR_NAME, defaults to the keystore password)")
	fs.StringVar(&f.Bundletool, "bundletool", "", "Path to bundletool.jar (auto-detected if not specified)")
	fs.StringVar(&f.Java, "java", "", "Path to java executable (auto-detected if not specified)")
	fs.StringVar(&f.Extractor, "extractor", string(extract.KindAuto), "APK set extractor: auto, system or native")
	fs.StringVar(&f.ConfigFile, "config", "", "YAML config file")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Abort the conversion after this duration (0 disables)")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVarP(&f.Quiet, "quiet", "q", false, "Quiet mode (errors only)")
	fs.BoolVar(&f.ListTools, "list-tools", false, "List discovered tools and exit")
	fs.BoolVar(&f.Check, "check", false, "Validate input, signing and tools without converting")
	fs.BoolVar(&f.JSON, "json", false, "Print results as JSON")
	fs.BoolVar(&f.ShowTiming, "show-timing", false, "Print how long the conversion took")
	fs.BoolVar(&f.NoTUI, "no-tui", false, "Disable the interactive progress view")
	return f
}

// ToolFinder discovers the tools Load needs when no explicit path is given.
type ToolFinder interface {
	FindJava() (string, bool)
	FindBundletool() (string, bool)
}

// AppConfig is the conversion request plus the toggles only the CLI cares about.
type AppConfig struct {
	domain.Config
	Extractor  extract.Kind
	Timeout    time.Duration
	ConfigFile string
	ListTools  bool
	Check      bool
	JSON       bool
	ShowTiming bool
	NoTUI      bool
}

// Load merges fs (already parsed into f) with env and the optional config
// file, then validates the result. Precedence is flag, environment, file, default.
func Load(fs *pflag.FlagSet, f *Flags, env platform.Env, tools ToolFinder) (*AppConfig, error) {
	cfg := &AppConfig{
		ListTools:  f.ListTools,
		Check:      f.Check,
		JSON:       f.JSON,
		ShowTiming: f.ShowTiming,
		NoTUI:      f.NoTUI,
	}
	cfg.Verbose = f.Verbose
	cfg.Quiet = f.Quiet || f.JSON

	cfg.ConfigFile = pick(fs, "config", f.ConfigFile, env.Getenv(EnvConfig), "")
	fc := &fileConfig{}
	if cfg.ConfigFile != "" {
		loaded, err := loadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		fc = loaded
	}

	cfg.OutputDir = pick(fs, "output", f.Output, env.Getenv(EnvOutput), fc.Output)
	cfg.BundletoolPath = pick(fs, "bundletool", f.Bundletool, env.Getenv(EnvBundletool), fc.Bundletool)
	cfg.JavaPath = pick(fs, "java", f.Java, env.Getenv(EnvJava), fc.Java)

	mode, err := domain.ParseOutputMode(pick(fs, "mode", f.Mode, "", fc.Mode))
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode

	kind, err := extract.ParseKind(pick(fs, "extractor", f.Extractor, "", fc.Extractor))
	if err != nil {
		return nil, err
	}
	cfg.Extractor = kind

	cfg.Timeout = f.Timeout
	if !fs.Changed("timeout") && fc.Timeout > 0 {
		cfg.Timeout = fc.Timeout
	}
	if cfg.Timeout < 0 {
		return nil, errors.Errorf("invalid timeout %s", cfg.Timeout)
	}

	if cfg.ListTools {
		return cfg, nil
	}

	if err := loadInput(cfg, f.Input); err != nil {
		return nil, err
	}
	if err := loadSigning(cfg, fs, f, &fc.Signing, env); err != nil {
		return nil, err
	}
	if err := loadTools(cfg, tools); err != nil {
		return nil, err
	}

	cfg.OutputDir = fsutil.AbsolutePath(cfg.OutputDir)
	return cfg, nil
}

func loadInput(cfg *AppConfig, input string) error {
	if input == "" {
		return ErrInputRequired
	}
	if !fsutil.FileExists(input) {
		return fmt.Errorf("input AAB file does not exist: %s", input)
	}
	if !fsutil.ValidateAAB(input) {
		return fmt.Errorf("%w: %s", ErrInvalidInput, input)
	}
	cfg.InputAAB = fsutil.AbsolutePath(input)
	return nil
}

// loadSigning builds cfg.Signing when any signing option is present.
func loadSigning(cfg *AppConfig, fs *pflag.FlagSet, f *Flags, fc *fileSigning, env platform.Env) error {
	keystore := pick(fs, "keystore", f.Keystore, "", fc.Keystore)
	ksPass := pick(fs, "ks-pass", f.KeystorePassword, "", fc.KeystorePassword)
	alias := pick(fs, "key-alias", f.KeyAlias, "", fc.KeyAlias)
	keyPass := pick(fs, "key-pass", f.KeyPassword, "", fc.KeyPassword)

	if keystore == "" && ksPass == "" && alias == "" && keyPass == "" {
		return nil
	}

	if !fsutil.ValidateKeystore(keystore) {
		return fmt.Errorf("%w: %s", ErrInvalidKeystore, keystore)
	}
	if alias == "" {
		return ErrAliasRequired
	}

	var err error
	if ksPass, err = ResolveSecret(ksPass, env); err != nil {
		return err
	}
	if keyPass, err = ResolveSecret(keyPass, env); err != nil {
		return err
	}
	if keyPass == "" {
		keyPass = ksPass
	}

	cfg.Signing = &domain.SigningConfig{
		KeystorePath:     fsutil.AbsolutePath(keystore),
		KeystorePassword: ksPass,
		KeyAlias:         alias,
		KeyPassword:      keyPass,
	}
	return nil
}

// loadTools fills in missing tool paths from discovery. A --check run
// tolerates missing tools so they can be reported.
func loadTools(cfg *AppConfig, tools ToolFinder) error {
	if cfg.BundletoolPath == "" && tools != nil {
		cfg.BundletoolPath, _ = tools.FindBundletool()
	}
	if cfg.BundletoolPath == "" && !cfg.Check {
		return ErrBundletoolMissing
	}
	if cfg.BundletoolPath != "" {
		cfg.BundletoolPath = fsutil.AbsolutePath(cfg.BundletoolPath)
	}

	if cfg.JavaPath == "" && tools != nil {
		cfg.JavaPath, _ = tools.FindJava()
	}
	if cfg.JavaPath == "" && !cfg.Check {
		return ErrJavaMissing
	}
	if hasSeparator(cfg.JavaPath) {
		cfg.JavaPath = fsutil.AbsolutePath(cfg.JavaPath)
	}
	return nil
}

// ResolveSecret expands an "env:NAME" reference. Other values are returned as is.
func ResolveSecret(value string, env platform.Env) (string, error) {
	name, ok := strings.CutPrefix(value, secretEnvPrefix)
	if !ok {
		return value, nil
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty name in %q", ErrSecretUnset, value)
	}
	resolved, ok := env.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrSecretUnset, name)
	}
	return resolved, nil
}

// pick applies flag > env > file precedence, falling back to the flag default.
func pick(fs *pflag.FlagSet, name, flagValue, envValue, fileValue string) string {
	if fs.Changed(name) {
		return flagValue
	}
	if envValue != "" {
		return envValue
	}
	if fileValue != "" {
		return fileValue
	}
	return flagValue
}
