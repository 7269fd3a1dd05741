package nesting

func k() {}
