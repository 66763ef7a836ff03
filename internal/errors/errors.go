package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Entity  string
	Context string // Additional context like "for this report"
}

func (e *AlreadyExistsError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s already exists %s", e.Entity, e.Context)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// Is enables errors.Is() comparison for AlreadyExistsError
func (e *AlreadyExistsError) Is(target error) bool {
	t, ok := target.(*AlreadyExistsError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// AuthenticationError represents authentication-related errors
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// TransitionError is returned when a report status change is not allowed
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Is matches any TransitionError so callers can compare against ErrInvalidTransition
func (e *TransitionError) Is(target error) bool {
	_, ok := target.(*TransitionError)
	return ok
}

// DeliveryError wraps a failed outbound send
type DeliveryError struct {
	Channel    string
	StatusCode int
	Permanent  bool
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s delivery failed with status %d: %v", e.Channel, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Entity Not Found Errors
var (
	ErrStaffNotFound             = NewNotFoundError("staff")
	ErrReportNotFound            = NewNotFoundError("absence report")
	ErrSubstituteRequestNotFound = NewNotFoundError("substitute request")
)

// Already Exists Errors
var (
	ErrSubstituteRequestExists = NewAlreadyExistsError("substitute request", "for this report and candidate")
	ErrReportExists            = NewAlreadyExistsError("absence report", "with this sequence")
)

// Business Logic Errors
var (
	ErrInvalidTransition = &TransitionError{}
	ErrAlreadyRecruiting = errors.New("recruitment already started for this report")
	ErrStatusConflict    = errors.New("report status changed concurrently")
	ErrInvalidStatus     = errors.New("invalid status")
)

// Delivery and Inbound Errors
var (
	ErrDispatchQueueFull    = errors.New("dispatch queue is full")
	ErrDispatcherClosed     = errors.New("dispatcher is closed")
	ErrInboundQueueFull     = errors.New("inbound queue is full")
	ErrInboundClosed        = errors.New("inbound processor is closed")
	ErrDuplicateEvent       = errors.New("event was already received")
	ErrChannelNotConfigured = &ConfigurationError{Message: "notification channel is not configured"}
)

// Authentication Errors
var (
	ErrInvalidSignature   = &AuthenticationError{Message: "invalid webhook signature"}
	ErrInvalidCredentials = &AuthenticationError{Message: "invalid username or password"}
	ErrAuthNotConfigured  = &ConfigurationError{Message: "admin credentials are not configured"}
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.Is(err, &NotFoundError{}) || errors.As(err, &notFoundErr)
}

// IsAlreadyExists checks if an error is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var existsErr *AlreadyExistsError
	return errors.Is(err, &AlreadyExistsError{}) || errors.As(err, &existsErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAuthentication checks if an error is an AuthenticationError
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}

// IsTransition checks if an error is a TransitionError
func IsTransition(err error) bool {
	var transitionErr *TransitionError
	return errors.As(err, &transitionErr)
}

// IsPermanentDelivery reports whether retrying the send cannot help.
// The outermost DeliveryError decides, so a wrapper can mark a mix of
// permanent and transient causes as retryable.
func IsPermanentDelivery(err error) bool {
	var deliveryErr *DeliveryError
	if errors.As(err, &deliveryErr) {
		return deliveryErr.Permanent
	}
	return IsConfiguration(err)
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewAlreadyExistsError creates a new AlreadyExistsError for a custom entity
func NewAlreadyExistsError(entity, context string) error {
	return &AlreadyExistsError{Entity: entity, Context: context}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(message string) error {
	return &AuthenticationError{Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

// NewTransitionError creates a TransitionError for the given statuses
func NewTransitionError(from, to string) error {
	return &TransitionError{From: from, To: to}
}

// NewDeliveryError creates a DeliveryError. Client errors other than 429 are permanent.
func NewDeliveryError(channel string, statusCode int, err error) error {
	permanent := statusCode >= 400 && statusCode < 500 && statusCode != 429
	return &DeliveryError{Channel: channel, StatusCode: statusCode, Permanent: permanent, Err: err}
}
