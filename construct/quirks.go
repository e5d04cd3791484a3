package construct

import (
	"strings"

	"github.com/tagtree/htmlkit/domtree"
)

// quirksPrefixes are public-identifier prefixes that always select quirks
// mode, and quirksExact are exact (lowercased) public-identifier matches
// that do the same (spec.md §4.5's "Quirks decision"), curated from the
// WHATWG list of legacy DTD identifiers the same way atom's tag/attribute
// tables and internal/charref's entity table are curated subsets of their
// full published vocabularies rather than exhaustive transcriptions.
var quirksPrefixes = []string{
	"+//silmaril//dtd html pro v",
	"-//advasoft ltd//dtd html 3.0 aswedit",
	"-//as//dtd html 3.0 aswedit",
	"-//ietf//dtd html 2.0",
	"-//ietf//dtd html 3.0",
	"-//ietf//dtd html 3.2",
	"-//ietf//dtd html level",
	"-//ietf//dtd html strict",
	"-//ietf//dtd html",
	"-//metrius//dtd metrius presentational",
	"-//microsoft//dtd internet explorer 2.0 html",
	"-//microsoft//dtd internet explorer 3.0 html",
	"-//microsoft//dtd internet explorer 4.0 html",
	"-//netscape comm. corp.//dtd html",
	"-//netscape comm. corp.//dtd strict html",
	"-//o'reilly and associates//dtd html",
	"-//softquad software//dtd hotmetal pro",
	"-//softquad//dtd hotmetal pro",
	"-//spyglass//dtd html 2.0 extended",
	"-//sq//dtd html 2.0 hotmetal + extensions",
	"-//sun microsystems corp.//dtd hotjava html",
	"-//w3c//dtd html 3 1995-03-24",
	"-//w3c//dtd html 3.2",
	"-//w3c//dtd html 3.2 draft",
	"-//w3c//dtd html 3.2 final",
	"-//w3c//dtd html 3.2s draft",
	"-//w3c//dtd html 4.0 transitional",
	"-//w3c//dtd html experimental",
	"-//w3c//dtd w3 html",
	"-//w3o//dtd w3 html 3.0",
	"-//webtechs//dtd mozilla html 2.0",
	"-//webtechs//dtd mozilla html",
}

var quirksExact = map[string]bool{
	`-//w3o//dtd w3 html strict 3.0//en//`: true,
	`-/w3c/dtd html 4.0 transitional/en`:   true,
	`html`:                                 true,
}

// quirksNoSystemIDPrefixes select quirks mode only when the DOCTYPE has no
// system identifier.
var quirksNoSystemIDPrefixes = []string{
	"-//w3c//dtd html 4.01 frameset",
	"-//w3c//dtd html 4.01 transitional",
}

// limitedQuirksPrefixes select limited-quirks mode, unconditionally for the
// XHTML entries and only when a system identifier is present for the
// HTML 4.01 ones (spec.md's "specific FRAMESET variants").
var limitedQuirksPrefixes = []string{
	"-//w3c//dtd xhtml 1.0 frameset",
	"-//w3c//dtd xhtml 1.0 transitional",
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// resolveQuirksMode implements spec.md §4.5's DOCTYPE-driven quirks
// decision.
func resolveQuirksMode(name, public, system string, hasSystem, forceQuirks bool) domtree.DocumentMode {
	if forceQuirks {
		return domtree.Quirks
	}
	if !strings.EqualFold(name, "html") {
		return domtree.Quirks
	}

	pub := strings.ToLower(public)
	if quirksExact[pub] || hasPrefixAny(pub, quirksPrefixes) {
		return domtree.Quirks
	}
	if !hasSystem && hasPrefixAny(pub, quirksNoSystemIDPrefixes) {
		return domtree.Quirks
	}

	if hasPrefixAny(pub, limitedQuirksPrefixes) {
		return domtree.LimitedQuirks
	}
	if hasSystem && hasPrefixAny(pub, quirksNoSystemIDPrefixes) {
		return domtree.LimitedQuirks
	}

	return domtree.NoQuirks
}
