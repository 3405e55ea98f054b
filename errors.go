package spriter

import "fmt"

// Kinds of problem recorded in the manifest.
const (
	KindDecode          = "decode"
	KindEncode          = "encode"
	KindMissingCategory = "missing-category"
)

// DecodeError is returned when a source image cannot be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to read '%s': %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned when an atlas page cannot be written.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("unable to write file '%s': %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// MissingCategoryError is returned when the folder for a category does not
// exist.
type MissingCategoryError struct {
	Path string
	Err  error
}

func (e *MissingCategoryError) Error() string {
	return fmt.Sprintf("expecting a directory at '%s', but it did not exist", e.Path)
}

func (e *MissingCategoryError) Unwrap() error {
	return e.Err
}
