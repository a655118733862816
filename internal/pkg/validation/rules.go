package validation

import (
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`

	// Student identifier pattern - letter prefix plus digits, e.g. S001 or 2021-00123
	StudentIDPattern = `^[A-Z0-9][A-Z0-9\-]{1,19}$`

	// Case identifier pattern - VIOL-<year>-<zero padded sequence>
	CaseIDPattern = `^VIOL-\d{4}-\d{3,}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email     *regexp.Regexp
	StudentID *regexp.Regexp
	CaseID    *regexp.Regexp
}{
	Email:     regexp.MustCompile(EmailPattern),
	StudentID: regexp.MustCompile(StudentIDPattern),
	CaseID:    regexp.MustCompile(CaseIDPattern),
}

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return CompiledPatterns.Email.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// IsValidStudentID reports whether s is an acceptable student identifier.
func IsValidStudentID(s string) bool {
	return CompiledPatterns.StudentID.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValidCaseID reports whether s is a well-formed violation case identifier.
func IsValidCaseID(s string) bool {
	return CompiledPatterns.CaseID.MatchString(s)
}

// IsValidCode checks if an entity code is uppercase alphanumeric.
func IsValidCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}

	for _, char := range code {
		if !((char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9')) {
			return false
		}
	}

	return true
}

// IsValidName checks name length bounds after trimming.
func IsValidName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) >= NameMinLength && len(name) <= NameMaxLength
}
