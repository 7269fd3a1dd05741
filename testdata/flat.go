// Package nesting is flat.
package nesting

func h(x bool) int {
	if x {
		return 1
	}
	return 0
}
