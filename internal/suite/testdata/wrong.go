package cases

import "fmt"

func wrong(err error) error {
	return fmt.Errorf("wrap %w", err) // Noncompliant {{something else}}
}
