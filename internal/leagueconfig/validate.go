package leagueconfig

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/wonny/liga/backend/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(rules *Rules) error {
	// === Meta ===
	if rules.Meta.LeagueID == "" {
		return ValidationError{"meta.league_id", "required"}
	}

	// === Scoring ===
	if rules.Scoring.ParticipationBonus < 0 {
		return ValidationError{"scoring.participation_bonus", "must be >= 0"}
	}
	if rules.Scoring.MinimumRatio < 0 {
		return ValidationError{"scoring.minimum_ratio", "must be >= 0"}
	}
	if rules.Scoring.MinimumFloor < 0 {
		return ValidationError{"scoring.minimum_floor", "must be >= 0"}
	}

	// === Configurations ===
	if err := validateConfiguration("defaults", rules.Defaults); err != nil {
		return err
	}

	stageIDs := make(map[string]struct{}, len(rules.Stages))
	for i, stage := range rules.Stages {
		field := fmt.Sprintf("stages[%d]", i)
		if stage.ID == "" {
			return ValidationError{field + ".id", "required"}
		}
		if _, dup := stageIDs[stage.ID]; dup {
			return ValidationError{field + ".id", fmt.Sprintf("duplicate stage %q", stage.ID)}
		}
		stageIDs[stage.ID] = struct{}{}

		if err := validateConfiguration(field+".configuration", stage.Configuration); err != nil {
			return err
		}

		divisionIDs := make(map[string]struct{}, len(stage.Divisions))
		for j, div := range stage.Divisions {
			divField := fmt.Sprintf("%s.divisions[%d]", field, j)
			if div.ID == "" {
				return ValidationError{divField + ".id", "required"}
			}
			if _, dup := divisionIDs[div.ID]; dup {
				return ValidationError{divField + ".id", fmt.Sprintf("duplicate division %q", div.ID)}
			}
			divisionIDs[div.ID] = struct{}{}

			if err := validateConfiguration(divField+".configuration", div.Configuration); err != nil {
				return err
			}
			if div.ResultsURL != "" {
				u, err := url.Parse(div.ResultsURL)
				if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
					return ValidationError{divField + ".results_url", "must be an http(s) URL"}
				}
			}
		}
	}

	return nil
}

func validateConfiguration(field string, cfg *contracts.Configuration) error {
	err := cfg.Validate()
	if err == nil {
		return nil
	}

	var inputErr *contracts.InputError
	if errors.As(err, &inputErr) {
		return ValidationError{field + "." + inputErr.Field, inputErr.Message}
	}
	return ValidationError{field, err.Error()}
}
