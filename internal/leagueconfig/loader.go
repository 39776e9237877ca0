package leagueconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML rules file and returns Rules with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Rules, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	rules, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return rules, data, nil
}

// Parse decodes and validates YAML rules
func Parse(data []byte) (*Rules, error) {
	rules := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(rules); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := Validate(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// Hash generates SHA256 hash from Rules (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(rules *Rules) (string, error) {
	jsonBytes, err := json.Marshal(rules)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
