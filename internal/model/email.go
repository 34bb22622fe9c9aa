package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// NormalizeEmail lower-cases and trims raw. It is idempotent.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Email is stored normalized no matter how the column is written: every
// value passes through NormalizeEmail on its way to the driver.
type Email string

func (e Email) String() string {
	return string(e)
}

func (e Email) Normalized() Email {
	return Email(NormalizeEmail(string(e)))
}

// Value implements driver.Valuer.
func (e Email) Value() (driver.Value, error) {
	return NormalizeEmail(string(e)), nil
}

// Scan implements sql.Scanner.
func (e *Email) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*e = Email(v)
	case []byte:
		*e = Email(v)
	case nil:
		*e = ""
	default:
		return fmt.Errorf("model: cannot scan %T into Email", src)
	}
	return nil
}
