package nesting

func broken(x, y, z bool) {
	if x {
		if y {
			if undefined(z) { // Noncompliant
			}
		}
	}
}
