package reading

import (
	"errors"
	"fmt"
	"strings"
)

// Сообщения для пользователя. Подробности ошибок пишутся только в лог.
const (
	MessageMissingCredential = "Thiếu khóa API. Vui lòng kiểm tra cấu hình của bạn."
	MessageFortuneService    = "Không thể kết nối với các vì sao. Vui lòng thử lại sau."
	MessageTarotService      = "Không thể kết nối với bộ bài. Vui lòng thử lại sau."
	MessageNoContent         = "Không có nội dung được tạo."
	MessageUnexpected        = "Đã xảy ra lỗi không mong muốn."
)

// ConfigurationError means the call never left the process: no credential.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ServiceError covers transport, HTTP and SDK failures of the generative call.
type ServiceError struct {
	Kind Kind
	Err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ValidationError is an empty or non-conforming reply.
type ValidationError struct {
	Kind     Kind
	Problems []string
	Err      error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s response invalid", e.Kind)
	if len(e.Problems) > 0 {
		msg += ": " + strings.Join(e.Problems, "; ")
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// UserMessage maps any failure to the fixed text shown to the visitor.
// It never returns an empty string.
func UserMessage(kind Kind, err error) string {
	var (
		cfgErr     *ConfigurationError
		svcErr     *ServiceError
		invalidErr *ValidationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return MessageMissingCredential
	case errors.As(err, &invalidErr):
		return MessageNoContent
	case errors.As(err, &svcErr):
		if svcErr.Kind != "" {
			kind = svcErr.Kind
		}
		return serviceMessage(kind)
	default:
		return MessageUnexpected
	}
}

func serviceMessage(kind Kind) string {
	if kind == KindTarot {
		return MessageTarotService
	}
	return MessageFortuneService
}
