// Package catalog holds the fixed set of sellable service packages and the
// decoding of a model's free-text pick into one of them.
package catalog

import (
	"strings"
	"unicode"
)

// Package identifies a catalog entry. Unknown means the model answered with
// something outside the catalog.
type Package int

const (
	Unknown Package = iota
	TechStartup
	SalesSupport
	EnterpriseBulk
	Custom
)

var labels = map[Package]string{
	TechStartup:    "Tech Startup Hiring Pack",
	SalesSupport:   "Sales & Support Pack",
	EnterpriseBulk: "Enterprise Bulk Hiring Pack",
	Custom:         "Custom Hiring Solution",
}

// Packages lists the catalog in presentation order.
func Packages() []Package {
	return []Package{TechStartup, SalesSupport, EnterpriseBulk, Custom}
}

// String returns the catalog label, or "Unknown".
func (p Package) String() string {
	if l, ok := labels[p]; ok {
		return l
	}
	return "Unknown"
}

// Recommendation is the decoded model answer. Raw always holds the trimmed
// reply so an Unknown pick can still be shown or logged verbatim.
type Recommendation struct {
	Package Package
	Raw     string
}

// Known reports whether the pick matched a catalog entry.
func (r Recommendation) Known() bool {
	return r.Package != Unknown
}

// Label is the canonical catalog label for known picks and the raw reply otherwise.
func (r Recommendation) Label() string {
	if r.Known() {
		return r.Package.String()
	}
	return r.Raw
}

// Reply is the text handed to the composer: the trimmed model reply as
// given, unless the pick was substituted for a catalog entry the reply does
// not name, or there was no reply. Those cases use the canonical label.
func (r Recommendation) Reply() string {
	if r.Raw == "" {
		return r.Package.String()
	}
	if r.Known() && normalize(r.Raw) != normalize(r.Package.String()) {
		return r.Package.String()
	}
	return r.Raw
}

// Parse decodes a model reply. Matching ignores case, surrounding quotes or
// markdown emphasis, a leading list number ("2. ") and trailing punctuation.
func Parse(reply string) Recommendation {
	raw := strings.TrimSpace(reply)
	key := normalize(raw)
	for _, p := range Packages() {
		if key == normalize(labels[p]) {
			return Recommendation{Package: p, Raw: raw}
		}
	}
	return Recommendation{Package: Unknown, Raw: raw}
}

func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsDigit(r) || r == '.' || r == ')' || unicode.IsSpace(r)
	})
	s = strings.Trim(s, "\"'`*_ .!")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
