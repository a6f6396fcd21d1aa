// The errors package provides the error primitives shared by the tagfile
// packages. Fatal errors are returned as single values, while non-fatal
// diagnostics, such as warnings produced while decoding a tag file, are
// accumulated into an Errors list.
package errors

import (
	"errors"
	"strings"
)

func New(text string) error {
	return errors.New(text)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Is reports whether any error in the tree of err matches target. The tree
// includes every error of an Errors list.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in the tree of err that matches target. The tree
// includes every error of an Errors list.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Errors is a list of errors.
type Errors []error

// Error formats the list by separating each message with a newline. Each
// produced line, including lines within messages, is prefixed with a tab.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	default:
		var buf strings.Builder
		buf.WriteString("multiple errors:")
		for _, err := range errs {
			buf.WriteString("\n\t")
			msg := err.Error()
			msg = strings.ReplaceAll(msg, "\n", "\n\t")
			buf.WriteString(msg)
		}
		return buf.String()
	}
}

// Unwrap returns the errors of the list, allowing Is and As to inspect each of
// them.
func (errs Errors) Unwrap() []error {
	return errs
}

// Append returns errs with each err appended to it. Arguments that are nil are
// skipped.
func (errs Errors) Append(err ...error) Errors {
	for _, err := range err {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Return prepares errs to be returned by a function by returning nil if errs is
// empty.
func (errs Errors) Return() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Union receives a number of errors and combines them into one Errors. Any errs
// that are Errors are concatenated directly. Returns nil if all errs are nil or
// empty.
func Union(errs ...error) error {
	var e Errors
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
			continue
		case Errors:
			for _, err := range err {
				if err != nil {
					e = append(e, err)
				}
			}
		default:
			e = append(e, err)
		}
	}
	return e.Return()
}

// List returns the errors contained in err. If err is an Errors, its elements
// are returned. A nil err produces an empty list.
func List(err error) Errors {
	switch err := err.(type) {
	case nil:
		return nil
	case Errors:
		return err
	default:
		return Errors{err}
	}
}
