package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SettingType declares how a setting's raw value should be interpreted
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingInteger SettingType = "integer"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
)

// IsValid reports whether the type is one of the known setting types.
func (t SettingType) IsValid() bool {
	switch t {
	case SettingString, SettingInteger, SettingBoolean, SettingJSON:
		return true
	}
	return false
}

// Setting defines a typed key/value row scoped by category
type Setting struct {
	ID        int64       `json:"id" db:"id"`
	Key       string      `json:"key" db:"key"`
	Value     string      `json:"value" db:"value"`
	Type      SettingType `json:"type" db:"type"`
	Category  string      `json:"category" db:"category"`
	IsPublic  bool        `json:"isPublic" db:"is_public"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// TypedValue parses the raw value according to the declared type.
func (s *Setting) TypedValue() (interface{}, error) {
	switch s.Type {
	case SettingString:
		return s.Value, nil
	case SettingInteger:
		v, err := strconv.ParseInt(s.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", s.Key, err)
		}
		return v, nil
	case SettingBoolean:
		v, err := strconv.ParseBool(s.Value)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", s.Key, err)
		}
		return v, nil
	case SettingJSON:
		var v interface{}
		if err := json.Unmarshal([]byte(s.Value), &v); err != nil {
			return nil, fmt.Errorf("setting %q: %w", s.Key, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("setting %q has unknown type %q", s.Key, s.Type)
}

// ValidateValue checks the raw value against the declared type without
// returning the parsed result.
func (s *Setting) ValidateValue() error {
	_, err := s.TypedValue()
	return err
}
