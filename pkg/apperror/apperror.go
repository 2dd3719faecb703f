package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 是错误分类的枚举。
// 所有核心操作返回的错误都必须属于其中一类，
// HTTP层只依据Kind来决定状态码。
type Kind int

const (
	// KindNotFound 实体不存在，或对调用者不可见
	KindNotFound Kind = iota + 1
	// KindForbidden 实体存在，但调用者不是所有者
	KindForbidden
	// KindConflict 状态机冲突：重复确认、修改已确认的草稿等
	KindConflict
	// KindInvalidState 缺少必填字段、坐标非法、长度超限、图片超过4张等
	KindInvalidState
	// KindTooEarly 在揭示时间到达之前尝试回顾确认
	KindTooEarly
	// KindTransient 存储/事务层面的临时失败，整个操作可以安全重试
	KindTransient
)

// Error 携带错误分类、面向用户的消息和底层原因。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建一个不带底层原因的分类错误。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 创建一个包装了底层原因的分类错误。
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound 等一组构造函数是常用分类的简写。
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func InvalidState(message string) *Error { return New(KindInvalidState, message) }
func TooEarly(message string) *Error     { return New(KindTooEarly, message) }

// Transient 把一个底层存储错误标记为可重试。
func Transient(message string, err error) *Error {
	return Wrap(KindTransient, message, err)
}

// KindOf 提取错误的分类。无法识别的错误一律按Transient处理，
// 因为所有核心操作都是事务性的，重试是安全的。
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindTransient
}

// Is 判断错误是否属于给定分类。
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus 把错误分类映射为HTTP状态码。
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindInvalidState:
		return http.StatusBadRequest
	case KindTooEarly:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message 返回适合直接展示给用户的消息。
// 对于未分类的内部错误，隐藏细节。
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "内部错误，请稍后重试"
}
