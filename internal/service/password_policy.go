package service

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MinMasterPasswordLength is the shortest master password Setup accepts.
const MinMasterPasswordLength = 12

// ValidateMasterPassword enforces the master password policy: at least
// [MinMasterPasswordLength] characters and at least one digit.
func ValidateMasterPassword(password string) error {
	if n := utf8.RuneCountInString(password); n < MinMasterPasswordLength {
		return fmt.Errorf("%w: got %d characters", ErrWeakMasterPassword, n)
	}
	for _, r := range password {
		if unicode.IsDigit(r) {
			return nil
		}
	}
	return fmt.Errorf("%w: no digit", ErrWeakMasterPassword)
}
