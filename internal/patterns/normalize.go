package patterns

import (
	"regexp"
	"strings"
)

var corporateSuffix = regexp.MustCompile(`[\s,]+(ltd|inc|llc|corp|limited|co|company)\.?$`)

// NormalizeCounterparty reduces a merchant label to the key used to group
// payments to the same obligation: lowercased, trimmed, trailing corporate
// suffixes removed, whitespace collapsed.
// "Netflix, Inc." -> "netflix"
func NormalizeCounterparty(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for {
		stripped := corporateSuffix.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	return strings.Join(strings.Fields(s), " ")
}
