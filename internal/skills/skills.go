// Package skills implements skill-set diffing between a résumé and a job
// description, with alias provenance.
package skills

import "sort"

// SkillSet maps a canonical skill identifier to the literal surface form
// ("alias") under which it was detected in one document. Keys are canonical
// and unique per document; values are display strings only and take no part
// in comparison.
type SkillSet map[string]string

// Match pairs a canonical skill with the alias relevant to the report:
// for matched skills the résumé's alias (how the candidate demonstrated it),
// for missing skills the job description's alias (what the employer expects).
type Match struct {
	Skill string
	Alias string
}

// Diff compares two skill sets on canonical keys only.
//
// matched holds keys present in both sets, annotated with the résumé alias;
// missing holds keys present only in the job description, annotated with the
// JD alias. Both slices are sorted lexicographically by canonical key, so
// the result is deterministic and order-independent in its inputs.
func Diff(resume, jd SkillSet) (matched, missing []Match) {
	matched = []Match{}
	missing = []Match{}
	for skill, jdAlias := range jd {
		if resumeAlias, ok := resume[skill]; ok {
			matched = append(matched, Match{Skill: skill, Alias: resumeAlias})
		} else {
			missing = append(missing, Match{Skill: skill, Alias: jdAlias})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Skill < matched[j].Skill })
	sort.Slice(missing, func(i, j int) bool { return missing[i].Skill < missing[j].Skill })
	return matched, missing
}

// Canonicals returns the sorted canonical keys of a skill set.
func (s SkillSet) Canonicals() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
