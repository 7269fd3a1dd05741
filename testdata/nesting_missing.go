package nesting

func g(x, y bool) {
	if x {
		if y { // Noncompliant {{Nested too deeply}}
		}
	}
}
