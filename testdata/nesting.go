package nesting

func f(x, y, z bool) {
	if x {
		if y {
			// Noncompliant@+1 {{Nested too deeply}}
			if z {
			}
		}
	}
	if x {
		if y {
			if z { // Noncompliant [[sc=4;el=+1;ec=5]] {{/Nested too .*/}}
			}
		}
	}
}
