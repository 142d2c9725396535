package domain

import (
	"fmt"
	"strings"
)

// Field is a named draft value checked by RequireFields.
type Field struct {
	Name  string
	Value string
}

// RequireFields returns an error naming the first blank field.
func RequireFields(fields ...Field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return fmt.Errorf("%s is required", f.Name)
		}
	}
	return nil
}

// ValidateReportType checks the report type against the known set.
func ValidateReportType(t ReportType) error {
	for _, known := range ReportTypes {
		if t == known {
			return nil
		}
	}
	return fmt.Errorf("invalid report type: %q", t)
}

// ValidateMaxPlayers enforces the backend's accepted tournament size range.
func ValidateMaxPlayers(n int) error {
	if n < MinTournamentPlayers || n > MaxTournamentPlayers {
		return fmt.Errorf("max players must be between %d and %d", MinTournamentPlayers, MaxTournamentPlayers)
	}
	return nil
}

// ValidateRobloxURL checks that a server link points at roblox.com.
func ValidateRobloxURL(raw string) error {
	if !strings.Contains(raw, "roblox.com") {
		return fmt.Errorf("invalid Roblox server URL")
	}
	return nil
}
