package leagueconfig

import (
	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/s2_scores"
)

// Rules is the league-wide rules file: scoring constants plus movement configuration
// per stage and division
type Rules struct {
	Meta     Meta                     `yaml:"meta" json:"meta"`
	Scoring  s2_scores.Scoring        `yaml:"scoring" json:"scoring"`
	Defaults *contracts.Configuration `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Stages   []Stage                  `yaml:"stages" json:"stages"`
}

// Meta 메타 정보
type Meta struct {
	LeagueID string `yaml:"league_id" json:"league_id"`
	Version  string `yaml:"version" json:"version"`
}

// Stage holds the stage-wide configuration and its division overrides
type Stage struct {
	ID            string                   `yaml:"id" json:"id"`
	Configuration *contracts.Configuration `yaml:"configuration,omitempty" json:"configuration,omitempty"`
	Divisions     []Division               `yaml:"divisions,omitempty" json:"divisions,omitempty"`
}

// Division is a division-specific override
type Division struct {
	ID            string                   `yaml:"id" json:"id"`
	Configuration *contracts.Configuration `yaml:"configuration,omitempty" json:"configuration,omitempty"`
	ResultsURL    string                   `yaml:"results_url,omitempty" json:"results_url,omitempty"` // published results page, optional
}

// ResultsSource is a division whose results are imported from a published page
type ResultsSource struct {
	StageID    string
	DivisionID string
	URL        string
}

// Default returns rules with default scoring and no movement configured
func Default() *Rules {
	return &Rules{
		Meta:    Meta{LeagueID: "default", Version: "1"},
		Scoring: s2_scores.DefaultScoring(),
	}
}

// Resolve returns the configuration that applies to a division:
// division-specific, then stage-wide, then the rules defaults.
// nil means system defaults.
// ⭐ SSOT: 설정 fallback 로직은 여기서만
func (r *Rules) Resolve(stageID, divisionID string) *contracts.Configuration {
	for i := range r.Stages {
		stage := &r.Stages[i]
		if stage.ID != stageID {
			continue
		}
		for j := range stage.Divisions {
			if stage.Divisions[j].ID == divisionID && stage.Divisions[j].Configuration != nil {
				return stage.Divisions[j].Configuration
			}
		}
		if stage.Configuration != nil {
			return stage.Configuration
		}
		break
	}
	return r.Defaults
}

// StageIDs returns the configured stage ids in file order
func (r *Rules) StageIDs() []string {
	ids := make([]string, 0, len(r.Stages))
	for _, s := range r.Stages {
		ids = append(ids, s.ID)
	}
	return ids
}

// ResultsSources lists divisions with a results_url, in file order
func (r *Rules) ResultsSources() []ResultsSource {
	var sources []ResultsSource
	for _, stage := range r.Stages {
		for _, div := range stage.Divisions {
			if div.ResultsURL == "" {
				continue
			}
			sources = append(sources, ResultsSource{StageID: stage.ID, DivisionID: div.ID, URL: div.ResultsURL})
		}
	}
	return sources
}
