package standings

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/wonny/liga/backend/internal/contracts"
)

type fingerprintInput struct {
	Enrollments   []contracts.Enrollment   `json:"enrollments"`
	Matches       []contracts.MatchRecord  `json:"matches"`
	Configuration *contracts.Configuration `json:"configuration"`
}

// Fingerprint returns a SHA-256 over the canonical JSON of the inputs.
// Identical inputs (same order) produce identical fingerprints, so the
// value doubles as a cache key for computed standings.
// 주의: enrollment 순서는 결과(tie-break)에 영향을 주므로 정렬하지 않음
func Fingerprint(enrollments []contracts.Enrollment, matches []contracts.MatchRecord, cfg *contracts.Configuration) (string, error) {
	if enrollments == nil {
		enrollments = []contracts.Enrollment{}
	}
	if matches == nil {
		matches = []contracts.MatchRecord{}
	}

	data, err := json.Marshal(fingerprintInput{
		Enrollments:   enrollments,
		Matches:       matches,
		Configuration: cfg,
	})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
