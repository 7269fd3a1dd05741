package cases

func syntax() {} // Noncompliant@x
