package draft

import (
	"fmt"
	"strings"
)

// Fallback drafts are plain fact sheets built without the language model.
// They are intentionally dry; an editor fleshes them out before publishing.

func fallbackGuide(f monsterFacts) *draftResponse {
	var b strings.Builder
	fmt.Fprintf(&b, "# A Newcomer's Guide to %s\n\n", f.Name)
	if len(f.Aliases) > 0 {
		fmt.Fprintf(&b, "Also known as: %s.\n\n", strings.Join(f.Aliases, ", "))
	}
	fmt.Fprintf(&b, "%s\n\n", f.Origin)
	fmt.Fprintf(&b, "## Vital statistics\n\n- Species: %s\n- Alignment: %s\n- Fan Power Index: %d\n\n",
		f.Species, f.Alignment, f.FanPowerIndex)
	if len(f.Abilities) > 0 {
		b.WriteString("## Abilities\n\n")
		for _, a := range f.Abilities {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}
	if len(f.Works) > 0 {
		b.WriteString("## Where to start\n\n")
		for _, w := range f.Works {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return &draftResponse{
		Title:   fmt.Sprintf("A Newcomer's Guide to %s", f.Name),
		Excerpt: fmt.Sprintf("Everything a new fan needs to know about %s.", f.Name),
		Body:    b.String(),
		Tags:    []string{"guide", strings.ToLower(f.Name)},
	}
}

func fallbackEraComparison(f monsterFacts) *draftResponse {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Across the Eras\n\n", f.Name)
	fmt.Fprintf(&b, "%s has appeared in %d distinct eras of the franchise.\n\n", f.Name, len(f.Eras))
	for _, era := range f.Eras {
		fmt.Fprintf(&b, "## The %s era\n\n(Editor: describe the %s-era portrayal of %s.)\n\n", era, era, f.Name)
	}
	return &draftResponse{
		Title:   fmt.Sprintf("%s Across the Eras", f.Name),
		Excerpt: fmt.Sprintf("How %s changed from era to era.", f.Name),
		Body:    b.String(),
		Tags:    []string{"era-comparison", strings.ToLower(f.Name)},
	}
}

func fallbackStory(f monsterFacts) *draftResponse {
	var b strings.Builder
	fmt.Fprintf(&b, "# In the Footsteps of %s\n\n", f.Name)
	fmt.Fprintf(&b, "(Editor: first-person story outline for %s.)\n\n", f.Name)
	fmt.Fprintf(&b, "Last known whereabouts: %s\n", f.Whereabouts)
	if len(f.Abilities) > 0 {
		fmt.Fprintf(&b, "Abilities to feature: %s\n", strings.Join(f.Abilities, ", "))
	}
	return &draftResponse{
		Title:   fmt.Sprintf("In the Footsteps of %s", f.Name),
		Excerpt: fmt.Sprintf("An original story told from the perspective of %s.", f.Name),
		Body:    b.String(),
		Tags:    []string{"story", strings.ToLower(f.Name)},
	}
}

func fallbackBattleAnalysis(f battleFacts) *draftResponse {
	var b strings.Builder
	fmt.Fprintf(&b, "# Battle Analysis: %s\n\n", f.Title)
	fmt.Fprintf(&b, "Location: %s\n\n%s\n\n## Combatants\n\n", f.Location, f.Summary)
	for _, p := range f.Participants {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("\n(Editor: expand on the turning point and tactics.)\n")
	return &draftResponse{
		Title:   fmt.Sprintf("Battle Analysis: %s", f.Title),
		Excerpt: fmt.Sprintf("A blow-by-blow look at %s.", f.Title),
		Body:    b.String(),
		Tags:    []string{"battle-analysis"},
	}
}
