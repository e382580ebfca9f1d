package musclemap

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Info struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	OverviewHTML string `json:"overview_html"`
}

type Tier struct {
	Tier     string `json:"tier"`
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
	VideoURL string `json:"video_url"`
}

// Detail is a muscle with all the tiers, S to F, missing tiers are empty.
type Detail struct {
	Info  Info   `json:"info"`
	Tiers []Tier `json:"tiers"`
}

type SaveRequest struct {
	Name         string `json:"name"`
	OverviewHTML string `json:"overview_html"`
	Tiers        []Tier `json:"tiers"`
}

// DisplayName is the catalog name, or the title-cased slug for unknown muscles.
func DisplayName(slug string) string {
	if m, ok := KnownMuscle(slug); ok {
		return m.Name
	}
	return cases.Title(language.English).String(slug)
}

func fullTiers(stored []Tier) []Tier {
	bySlug := make(map[string]Tier, len(stored))
	for _, t := range stored {
		bySlug[t.Tier] = t
	}
	tiers := make([]Tier, 0, len(Tiers))
	for _, letter := range Tiers {
		t, ok := bySlug[letter]
		if !ok {
			t = Tier{Tier: letter}
		}
		tiers = append(tiers, t)
	}
	return tiers
}

// normalize trims the request, falls back to the display name and drops invalid tiers.
func (req SaveRequest) normalize(slug string) (Info, []Tier) {
	info := Info{
		Slug:         slug,
		Name:         strings.TrimSpace(req.Name),
		OverviewHTML: strings.TrimSpace(req.OverviewHTML),
	}
	if info.Name == "" {
		info.Name = DisplayName(slug)
	}

	var tiers []Tier
	for _, t := range req.Tiers {
		letter := strings.ToUpper(strings.TrimSpace(t.Tier))
		if !IsValidTier(letter) {
			continue
		}
		tiers = append(tiers, Tier{
			Tier:     letter,
			Title:    strings.TrimSpace(t.Title),
			BodyHTML: strings.TrimSpace(t.BodyHTML),
			VideoURL: strings.TrimSpace(t.VideoURL),
		})
	}
	return info, tiers
}
