package errs

import (
	"github.com/pkg/errors"
)

const (
	CodeEncoderLaunchFailed = 3001
	CodeEncoderEarlyExit    = 3002
	CodeBitstreamTruncated  = 3003
	CodeSpsParseFailed      = 3004
	CodeClientSendFailed    = 3005
	CodeClientDecodeFailed  = 3006
	CodeUnknown             = 9999
)

var (
	ErrEncoderLaunchFailed = New(CodeEncoderLaunchFailed, "encoder launch failed")
	ErrEncoderEarlyExit    = New(CodeEncoderEarlyExit, "encoder exited early")
	ErrBitstreamTruncated  = New(CodeBitstreamTruncated, "bitstream read truncated")
	ErrSpsParseFailed      = New(CodeSpsParseFailed, "sps parse failed")
	ErrClientSendFailed    = New(CodeClientSendFailed, "client send failed")
	ErrClientDecodeFailed  = New(CodeClientDecodeFailed, "client input decode failed")
)

const (
	Success = "success"
)

// Error carries a stable numeric code alongside a human message, so callers
// can branch on Code(err) without string matching.
type Error struct {
	Code int32
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func New(code int32, msg string) error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

func Code(e error) int32 {
	if e == nil {
		return 0
	}
	err, ok := e.(*Error)
	if !ok {
		return CodeUnknown
	}

	if err == (*Error)(nil) {
		return 0
	}
	return err.Code
}

func Msg(e error) string {
	if e == nil {
		return Success
	}
	err, ok := e.(*Error)
	if !ok {
		return "unknown error: " + e.Error()
	}

	if err == (*Error)(nil) {
		return Success
	}

	return err.Msg
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
