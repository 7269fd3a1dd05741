package cases

import (
	"errors"
	"fmt"
)

var errNotFound = errors.New("not found")

func wrapFormat(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if name == "x" {
		return fmt.Errorf("lookup %s: %w", name, errNotFound)
	}
	if name == "y" {
		return fmt.Errorf("lookup %s (%w)", name, errNotFound) // Noncompliant {{annotation format "lookup %s (%w)" must end with ": %w"}}
	}
	// Noncompliant@+3 [[sc=20;ec=31;quickfixes=qf1]]
	// fix@qf1 {{End the format with ": %w"}}
	// edit@qf1 [[sc=20;ec=31]] {{"failed: %w"}}
	return fmt.Errorf("failed %w", errNotFound)
}
