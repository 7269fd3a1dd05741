package cases

import "os"

func broken() {
	os.Remove("x") // Noncompliant
	undefined()
}
