package cases

import "fmt"

func fix(err error) error {
	// Noncompliant@+3 [[sc=20;ec=29;quickfixes=qf1]]
	// fix@qf1 {{End the format with ": %w"}}
	// edit@qf1 [[sc=20;ec=29]] {{"wrap: %w"}}
	return fmt.Errorf("wrap %w", err)
}
