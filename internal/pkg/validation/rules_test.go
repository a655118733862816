package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("juan.cruz@example.com"))
	assert.True(t, IsValidEmail(" JUAN.CRUZ@EXAMPLE.COM "))
	assert.False(t, IsValidEmail("juan.cruz"))
	assert.False(t, IsValidEmail("juan@"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidStudentID(t *testing.T) {
	assert.True(t, IsValidStudentID("S001"))
	assert.True(t, IsValidStudentID("2021-00123"))
	assert.True(t, IsValidStudentID(" s001 "))
	assert.False(t, IsValidStudentID(""))
	assert.False(t, IsValidStudentID("S"))
	assert.False(t, IsValidStudentID("S 001"))
}

func TestIsValidCaseID(t *testing.T) {
	assert.True(t, IsValidCaseID("VIOL-2026-001"))
	assert.True(t, IsValidCaseID("VIOL-2026-1000"))
	assert.False(t, IsValidCaseID("VIOL-26-001"))
	assert.False(t, IsValidCaseID("CASE-2026-001"))
	assert.False(t, IsValidCaseID("viol-2026-001"))
}

func TestIsValidCode(t *testing.T) {
	assert.True(t, IsValidCode("CAS"))
	assert.True(t, IsValidCode("BSIT4"))
	assert.False(t, IsValidCode("cas"))
	assert.False(t, IsValidCode("C-AS"))
	assert.False(t, IsValidCode(""))
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("Juan"))
	assert.False(t, IsValidName("J"))
	assert.False(t, IsValidName("   "))
}
