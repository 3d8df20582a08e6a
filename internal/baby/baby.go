package baby

import (
	"strings"
	"time"
)

// #region maturity

// Maturity alters the feeding-overdue threshold.
type Maturity string

const (
	FullTerm  Maturity = "full_term"
	Premature Maturity = "premature"
)

// ParseMaturity is lenient: anything not recognizably premature is full term.
func ParseMaturity(s string) Maturity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "premature", "preterm", "pre_term", "pre-term":
		return Premature
	default:
		return FullTerm
	}
}

// #endregion maturity

// #region profile

// Profile is the caller-side record of a baby.
type Profile struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Maturity  Maturity  `json:"maturity" yaml:"maturity"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// #endregion profile
