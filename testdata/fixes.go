// Package fixes holds empty if statements.
package fixes

func f(x bool) {
	if x { // Noncompliant [[quickfixes=qf1]]
	}
	// fix@qf1 {{Remove the empty statement}}
	// edit@qf1 [[sc=2;el=+1;ec=3]] {{}}
}
