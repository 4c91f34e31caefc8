// Package access decides which role may perform which operation
package access

import "errors"

type Operation string

const (
	OpUpload          Operation = "upload"
	OpList            Operation = "list"
	OpRequestDownload Operation = "request_download"
	OpRedeemDownload  Operation = "redeem_download"
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrUnknownOperation = errors.New("unknown operation")
)

// Check reports whether a user with the given role may perform op. Operators
// administer files and are barred from consuming them, consumers may never upload.
func Check(isOps bool, op Operation) error {
	switch op {
	case OpUpload:
		if !isOps {
			return ErrForbidden
		}
	case OpList:
	case OpRequestDownload, OpRedeemDownload:
		if isOps {
			return ErrForbidden
		}
	default:
		return ErrUnknownOperation
	}

	return nil
}
