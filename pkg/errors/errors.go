package errors

import "fmt"

// Error codes
const (
	CodePanelError = "PANEL_ERROR"
	CodeAPIError   = "API_ERROR"
	CodeServer     = "SERVER_REJECTED"
	CodeValidation = "VALIDATION_ERROR"
	CodeStorage    = "STORAGE_ERROR"
	CodeService    = "SERVICE_ERROR"
)

type PanelError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *PanelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PanelError) Unwrap() error {
	return e.Cause
}

func NewPanelError(message, code string, statusCode int, context map[string]any) *PanelError {
	return &PanelError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *PanelError) WithCause(cause error) *PanelError {
	e.Cause = cause
	return e
}

// APIError covers transport failures and non-2xx responses from the recorder backend.
type APIError struct {
	*PanelError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		PanelError: &PanelError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

// ServerError is a command the backend answered with success=false.
// ServerMessage is empty when the backend did not say why.
type ServerError struct {
	*PanelError
	Operation     string
	ServerMessage string
}

func NewServerError(operation, serverMessage string) *ServerError {
	msg := fmt.Sprintf("%s rejected by backend", operation)
	if serverMessage != "" {
		msg = fmt.Sprintf("%s rejected by backend: %s", operation, serverMessage)
	}
	return &ServerError{
		PanelError: &PanelError{
			Message:    msg,
			Code:       CodeServer,
			StatusCode: 200,
			Context: map[string]any{
				"operation": operation,
			},
		},
		Operation:     operation,
		ServerMessage: serverMessage,
	}
}

type ValidationError struct {
	*PanelError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		PanelError: &PanelError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type StorageError struct {
	*PanelError
	Operation string
	Key       string
}

func NewStorageError(message, operation, key string, cause error) *StorageError {
	return &StorageError{
		PanelError: &PanelError{
			Message:    message,
			Code:       CodeStorage,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*PanelError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		PanelError: &PanelError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}
