package cases

func broken() {
	undefined()
}
