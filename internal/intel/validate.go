package intel

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidCompany wraps every company name rejection.
var ErrInvalidCompany = errors.New("invalid company")

const maxCompanyLen = 200

// Matches instruction phrases, not single words, so names such as
// "Override Technologies" or "Pretend Play" pass.
var injectionPattern = regexp.MustCompile(
	`(?i)\b(ignore\s+(previous|all|above|your)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+(a|an|if|root|the)\b|pretend\s+(to\s+be|you|that)\b|` +
		`forget\s+(everything|all|your)|override\s+(the|your|all|any|previous|prior)\b|` +
		`new\s+instructions)`,
)

// NormalizeCompany trims the name and rejects empty, oversized or
// instruction-like input before it is spliced into a prompt.
func NormalizeCompany(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", fmt.Errorf("%w: company is required", ErrInvalidCompany)
	}
	if utf8.RuneCountInString(name) > maxCompanyLen {
		return "", fmt.Errorf("%w: company exceeds %d characters", ErrInvalidCompany, maxCompanyLen)
	}
	if injectionPattern.MatchString(name) {
		return "", fmt.Errorf("%w: company contains instructions", ErrInvalidCompany)
	}
	return name, nil
}
