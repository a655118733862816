package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingTypedValue(t *testing.T) {
	tests := []struct {
		name    string
		setting Setting
		want    interface{}
		wantErr bool
	}{
		{"string", Setting{Key: "office.name", Type: SettingString, Value: "OSAS Office"}, "OSAS Office", false},
		{"integer", Setting{Key: "limit", Type: SettingInteger, Value: "5"}, int64(5), false},
		{"bad integer", Setting{Key: "limit", Type: SettingInteger, Value: "five"}, nil, true},
		{"boolean", Setting{Key: "flag", Type: SettingBoolean, Value: "true"}, true, false},
		{"bad boolean", Setting{Key: "flag", Type: SettingBoolean, Value: "maybe"}, nil, true},
		{"json", Setting{Key: "meta", Type: SettingJSON, Value: `{"a":1}`}, map[string]interface{}{"a": float64(1)}, false},
		{"bad json", Setting{Key: "meta", Type: SettingJSON, Value: `{`}, nil, true},
		{"unknown type", Setting{Key: "x", Type: SettingType("blob"), Value: "v"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.setting.TypedValue()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingValidateValue(t *testing.T) {
	ok := Setting{Key: "limit", Type: SettingInteger, Value: "10"}
	assert.NoError(t, ok.ValidateValue())

	bad := Setting{Key: "limit", Type: SettingInteger, Value: "ten"}
	assert.Error(t, bad.ValidateValue())
}

func TestSettingTypeIsValid(t *testing.T) {
	assert.True(t, SettingString.IsValid())
	assert.True(t, SettingJSON.IsValid())
	assert.False(t, SettingType("float").IsValid())
}
