package animal

import (
	"fmt"
	"strings"
)

// Sex of the animal.
type Sex string

const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
)

// IsValid returns true if the sex is recognized.
func (s Sex) IsValid() bool {
	return s == SexFemale || s == SexMale
}

// ParseSex accepts F/M or female/male in any case.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "female":
		return SexFemale, nil
	case "m", "male":
		return SexMale, nil
	default:
		return "", fmt.Errorf("invalid sex: %q", s)
	}
}
