package cases

import "os"

func missing() {
	// Noncompliant@+1
	_ = os.Remove
	os.Remove("x") // Noncompliant
}
