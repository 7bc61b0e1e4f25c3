package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	TooManyRequests     = 429
	InternalServerError = 500
	// ClientClosedRequest 客户端在响应前断开，沿用 nginx 的 499
	ClientClosedRequest = 499
)

var (
	ErrParamInvalid          = errors.New("invalid request body")
	ErrContentInvalid        = errors.New("content must be between 3 and 2000 characters")
	ErrTypeInvalid           = errors.New("type must be one of url, description, tweet")
	ErrEmailInvalid          = errors.New("invalid email address")
	ErrRoastNotFound         = errors.New("roast not found")
	ErrReferralNotFound      = errors.New("referral code not found")
	ErrRateLimited           = errors.New("too many requests, slow down")
	ErrGenerationUnavailable = errors.New("roast generation is unavailable, try again later")
	UnExpectedError          = errors.New("unexpected error, try again later")
	ErrRequestCanceled       = errors.New("request canceled")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:          BadRequest,
	ErrContentInvalid:        BadRequest,
	ErrTypeInvalid:           BadRequest,
	ErrEmailInvalid:          BadRequest,
	ErrRoastNotFound:         NotFound,
	ErrReferralNotFound:      NotFound,
	ErrRateLimited:           TooManyRequests,
	ErrGenerationUnavailable: InternalServerError,
	UnExpectedError:          InternalServerError,
	ErrRequestCanceled:       ClientClosedRequest,
}

// ErrorStatus 返回错误对应的 HTTP 状态码，未登记的错误 ok 为 false
func ErrorStatus(err error) (int, bool) {
	if code, ok := ErrorMap[err]; ok {
		return code, true
	}
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return InternalServerError, false
}
