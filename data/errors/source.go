package errors

func SourceFailed(err error, name string) error {
	return newError(err, "source '%s' failed to open", name)
}

func SourceClose(err error, name string) error {
	return newError(err, "source '%s' failed to close", name)
}

func SourceRead(err error, source, name string) error {
	return newError(err, "failed to read '%s' from source '%s'", name, source)
}

func SourceAddress(err error, address string) error {
	return newError(err, "invalid source address '%s'", address)
}
