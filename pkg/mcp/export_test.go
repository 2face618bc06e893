package mcp

// ErrorKind exposes errorKind for testing.
func ErrorKind(err error) string {
	return errorKind(err)
}

// EncodeError returns the error jsonResult produces for an unencodable value.
func EncodeError() error {
	_, err := jsonResult(make(chan int))

	return err
}
