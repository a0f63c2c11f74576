package vitals

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// #region parse-verdict
// ParseVerdict maps an upstream verdict string to a Verdict.
// Anything not recognized as pass or fail is unknown.
func ParseVerdict(s string) Verdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass":
		return VerdictPass
	case "fail":
		return VerdictFail
	}
	return VerdictUnknown
}

// #endregion parse-verdict

// #region evaluate
// Evaluate classifies raw metric values against the fixed thresholds and
// derives a verdict: fail if any reading fails, pass otherwise. Used when no
// upstream verdict accompanies the values (replay fixtures); live intake
// trusts the verdict reported by the measurement script.
func Evaluate(lcp, fid, cls float64) Report {
	rep := Report{Verdict: VerdictPass, LCP: lcp, FID: fid, CLS: cls}
	for _, m := range MetricOrder {
		if rep.Reading(m).Fails() {
			rep.Verdict = VerdictFail
			break
		}
	}
	return rep
}

// #endregion evaluate

// #region url-key
// URLKey derives the lookup key a page's metrics are stored under: a 32-bit
// signed rolling hash of the URL's UTF-16 code units, stringified. The empty
// URL maps to the empty key. Collisions are an accepted limitation.
func URLKey(url string) string {
	if url == "" {
		return ""
	}
	var h int32
	for _, u := range utf16.Encode([]rune(url)) {
		h = h*31 + int32(u)
	}
	return strconv.FormatInt(int64(h), 10)
}

// #endregion url-key
