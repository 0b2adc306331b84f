package errors

func RenderObject(err error, name string) error {
	return newError(err, "failed to render object '%s'", name)
}

func SaveImage(err error, path string) error {
	return newError(err, "failed to save image '%s'", path)
}
