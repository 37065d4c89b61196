package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/config"
)

var (
	// Set at build time with -ldflags "-X main.version=..."
	version = "1.0.0"
	commit  = "none"
	date    = "unknown"
)

// errReported means the failure was already shown and main only needs to exit 1.
var errReported = errors.New("failure already reported")

func newRootCmd() *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:   "aab2apk -i <app.aab> [flags]",
		Short: "Convert Android App Bundle (.aab) to APK files",
		Long: `aab2apk converts an Android App Bundle into installable APKs by driving
bundletool. Universal mode produces a single APK; split mode produces one APK
per configuration split. The result can optionally be signed with apksigner.`,
		Example: `  aab2apk -i app.aab -o ./dist --mode universal
  aab2apk -i app.aab --keystore release.jks --ks-pass env:KS_PASS --key-alias release
  aab2apk --list-tools --json`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return run(ctx, cmd, flags)
		},
	}
	cmd.SetVersionTemplate("aab2apk version {{.Version}}\n")
	flags = config.BindFlags(cmd.Flags())

	return cmd
}
