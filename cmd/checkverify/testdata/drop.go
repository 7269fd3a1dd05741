package cases

import "os"

func drop() {
	os.Remove("x") // Noncompliant {{error returned by os.Remove is dropped}}
}
