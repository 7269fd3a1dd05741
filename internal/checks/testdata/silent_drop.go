package cases

import (
	"fmt"
	"os"
	"strconv"
)

func cleanup(path string) error {
	return os.Remove(path)
}

func silentDrop(path string) int {
	os.Remove(path) // Noncompliant {{error returned by os.Remove is dropped}}

	// Noncompliant@+1 [[secondary=-7]] {{error returned by cleanup is dropped}}
	cleanup(path)

	n, _ := strconv.Atoi(path) // Noncompliant [[sc=10;ec=28]]
	_ = cleanup(path)          // Noncompliant [[secondary=-11]]

	fmt.Println("done")
	v, err := strconv.Atoi(path)
	if err != nil {
		return 0
	}
	return n + v
}
