package leagueconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/liga/backend/internal/s2_scores"
)

const sampleYAML = `
meta:
  league_id: test-league
  version: "1"
scoring:
  participation_bonus: 0.2
stages:
  - id: s1
    configuration:
      promotion_percentage: 20
      relegation_percentage: 20
    divisions:
      - id: primera
        configuration:
          fixed_promotion_slots: 0
      - id: segunda
  - id: s2
`

func TestParse(t *testing.T) {
	rules, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "test-league", rules.Meta.LeagueID)
	assert.InDelta(t, 0.2, rules.Scoring.ParticipationBonus, 1e-9)
	// unspecified scoring fields keep their defaults
	assert.InDelta(t, s2_scores.DefaultScoring().MinimumRatio, rules.Scoring.MinimumRatio, 1e-9)
	assert.Equal(t, []string{"s1", "s2"}, rules.StageIDs())
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("meta:\n  league_id: x\n  leage: typo\n"))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	rules, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), rules)
}

func TestResolve(t *testing.T) {
	rules, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	// division-specific wins
	primera := rules.Resolve("s1", "primera")
	require.NotNil(t, primera)
	require.NotNil(t, primera.FixedPromotionSlots)
	assert.Equal(t, 0, *primera.FixedPromotionSlots)
	assert.Nil(t, primera.PromotionPercentage)

	// division without its own block falls back to stage-wide
	segunda := rules.Resolve("s1", "segunda")
	require.NotNil(t, segunda)
	require.NotNil(t, segunda.PromotionPercentage)
	assert.InDelta(t, 20.0, *segunda.PromotionPercentage, 1e-9)

	// unknown division falls back to stage-wide as well
	assert.Equal(t, segunda, rules.Resolve("s1", "tercera"))

	// stage without configuration and unknown stage fall back to system defaults
	assert.Nil(t, rules.Resolve("s2", "primera"))
	assert.Nil(t, rules.Resolve("nope", "primera"))
}

func TestResolve_RulesDefaults(t *testing.T) {
	rules, err := Parse([]byte("meta:\n  league_id: x\ndefaults:\n  playoff_slots_per_zone: 1\n"))
	require.NoError(t, err)

	cfg := rules.Resolve("any", "any")
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.PlayoffSlots())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantField string
	}{
		{"missing league id", "meta:\n  version: x\n", "meta.league_id"},
		{"negative bonus", "meta:\n  league_id: x\nscoring:\n  participation_bonus: -1\n", "scoring.participation_bonus"},
		{"stage without id", "meta:\n  league_id: x\nstages:\n  - configuration: {}\n", "stages[0].id"},
		{"duplicate stage", "meta:\n  league_id: x\nstages:\n  - id: a\n  - id: a\n", "stages[1].id"},
		{"duplicate division", "meta:\n  league_id: x\nstages:\n  - id: a\n    divisions:\n      - id: d\n      - id: d\n", "stages[0].divisions[1].id"},
		{"percentage out of range", "meta:\n  league_id: x\nstages:\n  - id: a\n    configuration:\n      promotion_percentage: 150\n", "stages[0].configuration.promotion_percentage"},
		{"negative defaults playoff", "meta:\n  league_id: x\ndefaults:\n  playoff_slots_per_zone: -1\n", "defaults.playoff_slots_per_zone"},
		{"results url scheme", "meta:\n  league_id: x\nstages:\n  - id: a\n    divisions:\n      - id: d\n        results_url: ftp://host/r\n", "stages[0].divisions[0].results_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var vErr ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestResultsSources(t *testing.T) {
	rules, err := Parse([]byte(`
meta:
  league_id: x
stages:
  - id: a
    divisions:
      - id: d1
        results_url: https://example.org/a/d1
      - id: d2
  - id: b
    divisions:
      - id: d1
        results_url: https://example.org/b/d1
`))
	require.NoError(t, err)

	assert.Equal(t, []ResultsSource{
		{StageID: "a", DivisionID: "d1", URL: "https://example.org/a/d1"},
		{StageID: "b", DivisionID: "d1", URL: "https://example.org/b/d1"},
	}, rules.ResultsSources())
	assert.Empty(t, Default().ResultsSources())
}

func TestHash(t *testing.T) {
	rules, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	hash, err := Hash(rules)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// 동일 설정 → 동일 해시
	again, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	hash2, err := Hash(again)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)

	rules.Scoring.ParticipationBonus = 0.3
	hash3, err := Hash(rules)
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash3)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "league.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	rules, raw, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleYAML, string(raw))
	assert.Equal(t, "test-league", rules.Meta.LeagueID)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ShippedRules(t *testing.T) {
	path := "../../config/league.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	rules, _, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, rules.Stages)
}
