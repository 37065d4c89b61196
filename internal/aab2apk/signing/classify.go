package signing

import (
	"strings"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
)

// ClassifyResult decides whether an apksigner run succeeded. A non-zero exit
// always fails. Otherwise stderr is matched case-insensitively: "signed" or
// "verified" wins over "error", "failed" or "exception"; with none of those
// words the exit code decides.
//
// This matches on tool wording and can misclassify other apksigner versions.
// It is kept as-is for compatibility.
func ClassifyResult(res domain.ProcessResult) bool {
	if !res.Success() {
		return false
	}

	stderr := strings.ToLower(res.Stderr)
	if strings.Contains(stderr, "signed") || strings.Contains(stderr, "verified") {
		return true
	}
	if strings.Contains(stderr, "error") ||
		strings.Contains(stderr, "failed") ||
		strings.Contains(stderr, "exception") {
		return false
	}
	return res.Success()
}
