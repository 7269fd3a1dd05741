package cases

import (
	"fmt"
	"io"
	"os"
)

func logError() {
	err := fmt.Errorf("read stream: %w", io.EOF)
	if err != nil {
		fmt.Println("fetch data:", err)
	}
}

func dropError(path string) {
	err := os.Remove(path)
	if err != nil { // Noncompliant [[sc=2;ec=15]] {{error err is neither logged nor abandoned}} ; effort=2
		path = ""
		return
	}
}

func abandon(path string) {
	if _, err := os.Stat(path); nil != err {
		os.Exit(1)
	}
}

func deferred() func() {
	return func() {
		err := os.Remove("x")
		if err != nil { // Noncompliant
			_ = err
		}
	}
}

func withError(path string) error {
	err := os.Remove(path)
	if err != nil {
		return nil
	}
	return nil
}
