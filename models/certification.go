package models

import "strings"

// Brazilian age certification ladder - lower number = more restrictive.
// "L" (Livre) is unrestricted; numeric ratings are minimum ages.
var certificationOrder = map[string]int{
	"L":  1,
	"10": 2,
	"12": 3,
	"14": 4,
	"16": 5,
	"18": 6,
}

// CertificationLevel returns the restrictiveness level for an age rating.
// Returns 0 for unknown ratings.
func CertificationLevel(rating string) int {
	return certificationOrder[strings.ToUpper(strings.TrimSpace(rating))]
}

// ValidCertification reports whether rating is a known age rating. The empty
// string is valid and means no restriction.
func ValidCertification(rating string) bool {
	if strings.TrimSpace(rating) == "" {
		return true
	}
	return CertificationLevel(rating) != 0
}

// CertificationAllowed reports whether content rated rating may be shown
// under the given maximum. Unrated content is blocked when a maximum is set.
func CertificationAllowed(rating, max string) bool {
	if strings.TrimSpace(max) == "" {
		return true
	}
	level := CertificationLevel(rating)
	maxLevel := CertificationLevel(max)
	if level == 0 || maxLevel == 0 {
		return false
	}
	return level <= maxLevel
}
