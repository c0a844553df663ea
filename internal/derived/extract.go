package derived

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"regexp"
	"strings"

	xerrors "github.com/Iron-Ham/xcstatus/internal/errors"
)

// Extraction tiers. Source-located errors are preferred; generic matches are
// used only when no source-located error was found in the whole artifact.
type tier int

const (
	tierSource tier = iota
	tierGeneric
)

// extractRule pairs a pattern with its tier. Rules are tried top to bottom
// per line; the first match wins and no further rules are tried for that
// line.
type extractRule struct {
	re   *regexp.Regexp
	tier tier
}

// sourceExtPattern covers the source extensions the Xcode toolchain reports
// locations for.
const sourceExtPattern = `(?:swift|m|mm|c|cc|cpp|h|hpp|metal)`

// extractRules is the ordered rule table. Explicit "error:" markers rank
// above bare location-message lines so the message group excludes the
// marker.
var extractRules = []extractRule{
	{regexp.MustCompile(`(.+\.` + sourceExtPattern + `:\d+:\d+):\s+error:\s+(.+)`), tierSource},
	{regexp.MustCompile(`(.+\.` + sourceExtPattern + `:\d+:\d+):\s+(.+)`), tierSource},
	{regexp.MustCompile(`(?i)error:\s+(.+)`), tierGeneric},
	{regexp.MustCompile(`(?i)fatal error:\s+(.+)`), tierGeneric},
	{regexp.MustCompile(`(?i)compilation failed:\s+(.+)`), tierGeneric},
}

// hexRunRE filters lines carrying long hex identifiers (build hashes, mangled
// symbols) that are never useful diagnostics.
var hexRunRE = regexp.MustCompile(`[0-9A-F]{20,}`)

// Extractor pulls human-readable error strings out of a build log artifact.
// Artifacts are usually gzip-compressed SLF0 logs; the extractor decompresses
// when it can and falls back to raw bytes when it cannot, then pattern-matches
// line by line over the best-effort decoded text.
type Extractor struct {
	// MaxLength excludes any error string at or above this many characters.
	MaxLength int
	// MaxErrors caps the result length; 0 means unlimited.
	MaxErrors int
}

// NewExtractor creates an Extractor with the given caps.
func NewExtractor(maxLength, maxErrors int) *Extractor {
	if maxLength <= 0 {
		maxLength = 500
	}
	return &Extractor{MaxLength: maxLength, MaxErrors: maxErrors}
}

// Extract reads the artifact at path and returns its distinct error strings
// in first-seen order. A missing or unreadable artifact returns
// ErrArtifactUnreadable; callers fall back to the manifest's coarse count.
func (e *Extractor) Extract(path string) ([]string, error) {
	text, err := readArtifact(path)
	if err != nil {
		return nil, xerrors.Wrapf(xerrors.ErrArtifactUnreadable, "reading %s: %v", path, err)
	}
	return e.ExtractText(text), nil
}

// ExtractText runs the rule table over already-decoded log text.
func (e *Extractor) ExtractText(text string) []string {
	var sourceErrors, genericErrors []string
	seenSource := make(map[string]bool)
	seenGeneric := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		for _, rule := range extractRules {
			match := rule.re.FindStringSubmatch(line)
			if match == nil {
				continue
			}

			switch rule.tier {
			case tierSource:
				location, message := match[1], match[2]
				if strings.Contains(strings.ToLower(message), "warning") {
					break
				}
				full := location + ": " + message
				if e.acceptable(full) && !seenSource[full] {
					seenSource[full] = true
					sourceErrors = append(sourceErrors, full)
				}
			case tierGeneric:
				message := strings.TrimSpace(match[1])
				if e.acceptable(message) && !seenGeneric[message] {
					seenGeneric[message] = true
					genericErrors = append(genericErrors, message)
				}
			}
			break // first matching rule wins for this line
		}
	}

	errors := sourceErrors
	if len(errors) == 0 {
		errors = genericErrors
	}
	if e.MaxErrors > 0 && len(errors) > e.MaxErrors {
		errors = errors[:e.MaxErrors]
	}
	return errors
}

// acceptable applies the length cap and the hex-run filter.
func (e *Extractor) acceptable(s string) bool {
	return len(s) < e.MaxLength && !hexRunRE.MatchString(s)
}

// readArtifact loads an artifact, preferring gzip decompression and falling
// back to raw bytes since some artifacts are stored uncompressed. Invalid
// bytes are replaced rather than failing the read.
func readArtifact(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if gz, err := gzip.NewReader(bytes.NewReader(data)); err == nil {
		if decompressed, err := io.ReadAll(gz); err == nil {
			data = decompressed
		}
		gz.Close()
	}

	return strings.ToValidUTF8(string(data), "�"), nil
}
