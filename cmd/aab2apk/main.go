package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			(&report.Printer{Out: os.Stdout, Err: os.Stderr}).Error(err)
		}
		os.Exit(1)
	}
}
