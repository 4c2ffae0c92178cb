package batch

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/MrWong99/callaudit/internal/domain"
)

// fieldDelimiter is the literal " _ " separator between filename-grammar
// fields (§6 INPUT FILENAME GRAMMAR).
const fieldDelimiter = " _ "

var camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// dialerSuffixRe extracts the dialer name as the token after the last space
// in a parent folder name.
var dialerSuffixRe = regexp.MustCompile(`.* ([^ ]+)$`)

// ParseFilename extracts CallMetadata from one input file path. The stem
// (filename without extension) is split on " _ " into 4 fields
// (agent/timestamp/phone/disposition), 2 fields (agent/phone), or, failing
// both, treated as a bare agent name. The parent directory's trailing
// space-delimited token is recorded as the dialer name.
func ParseFilename(path string) domain.CallMetadata {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fields := strings.Split(stem, fieldDelimiter)

	meta := domain.CallMetadata{}
	switch len(fields) {
	case 4:
		meta.AgentName = displayAgentName(fields[0])
		meta.Timestamp = displayTimestamp(fields[1])
		meta.PhoneNumber = fields[2]
		meta.Disposition = fields[3]
	case 2:
		meta.AgentName = displayAgentName(fields[0])
		meta.PhoneNumber = fields[1]
	default:
		meta.AgentName = displayAgentName(stem)
	}

	parent := filepath.Base(filepath.Dir(path))
	if m := dialerSuffixRe.FindStringSubmatch(parent); m != nil {
		meta.DialerName = m[1]
	}

	return meta
}

// displayAgentName inserts a space before each capital letter in a CamelCase
// run, e.g. "JohnSmith" -> "John Smith".
func displayAgentName(agent string) string {
	return camelBoundaryRe.ReplaceAllString(agent, "$1 $2")
}

// displayTimestamp rewrites a "HH_MMam"/"HH_MMpm" suffix as "HH:MMam"/"HH:MMpm";
// timestamps without that suffix pattern are returned unchanged.
var timestampSuffixRe = regexp.MustCompile(`(\d{1,2})_(\d{2})(am|pm)$`)

func displayTimestamp(ts string) string {
	return timestampSuffixRe.ReplaceAllString(ts, "$1:$2$3")
}
