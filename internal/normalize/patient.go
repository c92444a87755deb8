package normalize

import "strings"

// Rule is a single step of the patient-identifier rewrite chain. Rules run
// strictly in order; each rule's output is the next rule's input. A rule
// that does not match its input returns it unchanged.
type Rule struct {
	Name  string
	Apply func(string) string
}

// preExceptions corrects known-bad raw identifiers before the pattern rules
// run, because several of these values would otherwise trigger the hyphen or
// prefix rules. Matched on the exact value only, never as a substring.
var preExceptions = map[string]string{
	// Truncated exports where only the billing-system prefix survived,
	// resolved by hand against the referral log.
	"86": "391",
	"85": "1261",
	// Identifiers entered with the system prefix doubled.
	"8686202": "86202",
	"8585114": "85114",
}

// postExceptions corrects identifiers discovered through manual
// reconciliation review. Applied last: the keys are already in canonical
// form and must not be re-processed by the pattern rules.
var postExceptions = map[string]string{
	"SYN-88":  "SYN-880",
	"SYN-0":   "SYN-1044",
	"100231":  "10023",
	"SYN-J12": "SYN-912",
}

// PatientNormalizer canonicalizes heterogeneous patient-identifier strings
// from the billing and referral systems into one comparable key.
type PatientNormalizer struct {
	rules []Rule
}

// NewPatientNormalizer builds a normalizer from the built-in exception
// tables merged with optional site-specific overrides from config.
func NewPatientNormalizer(extraPre, extraPost map[string]string) *PatientNormalizer {
	pre := mergeExact(preExceptions, extraPre)
	post := mergeExact(postExceptions, extraPost)

	return &PatientNormalizer{rules: []Rule{
		{Name: "pre_exceptions", Apply: exactRewrite(pre)},
		{Name: "strip_hyphens", Apply: stripHyphens},
		{Name: "fix_syn_typo", Apply: fixSynTypo},
		{Name: "drop_system_prefix", Apply: dropSystemPrefix},
		{Name: "rehyphenate_syn", Apply: rehyphenateSyn},
		{Name: "post_exceptions", Apply: exactRewrite(post)},
	}}
}

// Rules exposes the ordered rewrite chain, mainly for tests.
func (n *PatientNormalizer) Rules() []Rule {
	return n.rules
}

// Normalize canonicalizes a raw patient identifier. Pure and idempotent;
// empty input passes through unchanged.
func (n *PatientNormalizer) Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	for _, r := range n.rules {
		s = r.Apply(s)
	}
	return s
}

// Default is the normalizer with only the built-in exception tables.
var Default = NewPatientNormalizer(nil, nil)

// PatientID canonicalizes a raw identifier using the default normalizer.
func PatientID(raw string) string {
	return Default.Normalize(raw)
}

func mergeExact(base, extra map[string]string) map[string]string {
	m := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		m[k] = v
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// exactRewrite substitutes the whole value on an exact table hit.
func exactRewrite(table map[string]string) func(string) string {
	return func(s string) string {
		if v, ok := table[s]; ok {
			return v
		}
		return s
	}
}

func stripHyphens(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

// fixSynTypo repairs the recurring "SNY" misspelling of the synthetic-id
// marker. Runs after hyphen stripping so "SN-Y" style breaks cannot hide
// the token.
func fixSynTypo(s string) string {
	return strings.ReplaceAll(s, "SNY", "SYN")
}

// dropSystemPrefix removes the 2-digit billing-system prefix, exposing the
// identifier assigned by the referral system. A bare "86"/"85" is left for
// the exception tables.
func dropSystemPrefix(s string) string {
	if len(s) > 2 && (strings.HasPrefix(s, "86") || strings.HasPrefix(s, "85")) {
		return s[2:]
	}
	return s
}

// rehyphenateSyn restores the cross-system canonical "SYN-<digits>" form on
// synthetic identifiers after hyphen stripping.
func rehyphenateSyn(s string) string {
	if strings.HasPrefix(s, "S") && len(s) > 3 && s[3] != '-' {
		return s[:3] + "-" + s[3:]
	}
	return s
}
