package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudentID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    StudentID
		wantErr bool
	}{
		{"simple", "S001", StudentID("S001"), false},
		{"lowercased input", "s001", StudentID("S001"), false},
		{"surrounding whitespace", "  2021-00123  ", StudentID("2021-00123"), false},
		{"digits only", "20210042", StudentID("20210042"), false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"embedded space", "S 001", "", true},
		{"punctuation", "S001!", "", true},
		{"too long", "S123456789012345678901", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStudentID(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewStudentIDNormalizesToSingleForm(t *testing.T) {
	a, err := NewStudentID("s001")
	require.NoError(t, err)
	b, err := NewStudentID(" S001 ")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStudentDisplayName(t *testing.T) {
	s := &Student{FirstName: "Juan", MiddleName: "Reyes", LastName: "Cruz"}
	assert.Equal(t, "Juan Reyes Cruz", s.DisplayName())

	s = &Student{FirstName: "Juan", LastName: "Cruz"}
	assert.Equal(t, "Juan Cruz", s.DisplayName())

	s = &Student{StudentID: "S001"}
	assert.Equal(t, "Student S001", s.DisplayName())
}
