package cases

import "os"

type reporter struct{}

func (reporter) Report(err error) {}

func report(r reporter) {
	if err := os.Remove("x"); err != nil {
		r.Report(err)
	}
}
