package errs

import (
	"errors"
	"net/http"
)

// 错误码
const (
	ServerInternalError = 500
	ArgsError           = 1001
	RecordNotFoundError = 1004

	TokenMissingError = 1501
	TokenExpiredError = 1502
	TokenInvalidError = 1503
	LoginFailedError  = 1504

	TokenError = 1500 // 所有 token 相关错误的父级

	NotConnectedError = 2001
)

var (
	ErrServerInternal = NewCodeError(ServerInternalError, "server internal error")
	ErrArgs           = NewCodeError(ArgsError, "invalid arguments")
	ErrRecordNotFound = NewCodeError(RecordNotFoundError, "Paket ID not found")

	ErrToken        = NewCodeError(TokenError, "token error")
	ErrTokenMissing = NewCodeError(TokenMissingError, "Missing or invalid token.")
	ErrTokenExpired = NewCodeError(TokenExpiredError, "The token has expired.")
	ErrTokenInvalid = NewCodeError(TokenInvalidError, "Invalid token")
	ErrLoginFailed  = NewCodeError(LoginFailedError, "bad username or password")

	ErrNotConnected = NewCodeError(NotConnectedError, "client not connected")
)

func init() {
	_ = DefaultCodeRelation.Add(TokenError, TokenMissingError)
	_ = DefaultCodeRelation.Add(TokenError, TokenExpiredError)
	_ = DefaultCodeRelation.Add(TokenError, TokenInvalidError)
}

// HTTPStatus maps an error to the status code written by the handlers.
func HTTPStatus(err error) int {
	if errors.Is(err, ErrToken) {
		return http.StatusUnauthorized
	}
	switch AsCode(err).Code {
	case ArgsError:
		return http.StatusBadRequest
	case RecordNotFoundError:
		return http.StatusNotFound
	case LoginFailedError:
		return http.StatusUnauthorized
	case NotConnectedError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
