package cases

import "os"

func clean() error {
	return os.Remove("x")
}
