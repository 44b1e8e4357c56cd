package termfile

import (
	"fmt"
	"sort"
)

// Apply writes the requested terms into the document, label by label. Updates
// maps label name → language → new term. Labels or language slots absent from
// the document are reported as warnings and skipped: the document's shape is
// never extended, only existing slots are overwritten. The returned count is
// the number of slots whose value actually changed, so callers can avoid
// committing no-op edits.
func Apply(doc *Document, updates map[string]map[string]string) (int, []string) {
	changed := 0
	var warnings []string

	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		label, ok := doc.LabelByName(name)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("label %q not found, skipped", name))
			continue
		}

		languages := make([]string, 0, len(updates[name]))
		for lang := range updates[name] {
			languages = append(languages, lang)
		}
		sort.Strings(languages)

		for _, lang := range languages {
			term := updates[name][lang]
			current, ok := label.Term(lang)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("label %q has no %q translation slot, skipped", name, lang))
				continue
			}
			if current == term {
				continue
			}
			label.SetTerm(lang, term)
			changed++
		}
	}
	return changed, warnings
}
