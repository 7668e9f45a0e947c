package installer

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DiffOptions controls unified patch generation.
type DiffOptions struct {
	// MaxBytes is a guardrail on input size (current+payload). When exceeded,
	// a minimal placeholder patch is returned and oversize=true. 0 means "no limit".
	MaxBytes int

	// Context controls the number of context lines in unified hunks.
	// If 0, default to 3.
	Context int
}

// Diff produces a classic unified patch from the local file content to the
// registry payload. Returns the patch body and a flag indicating it was
// omitted due to size.
func Diff(dest string, current, payload []byte, opt DiffOptions) (body string, oversize bool) {
	fromFile := dest
	toFile := dest + " (registry)"

	if opt.MaxBytes > 0 && (len(current)+len(payload)) > opt.MaxBytes {
		return omitted(fromFile, toFile), true
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(current)),
		B:        splitLinesKeepNL(string(payload)),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		// Very rare; return placeholder instead of an empty patch.
		return omitted(fromFile, toFile), false
	}
	return s, false
}

// splitLinesKeepNL splits into lines and keeps newline characters,
// which produces better unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}

// omitted returns a compact placeholder when size limits are exceeded.
func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}
