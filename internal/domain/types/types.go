package types

// ServiceName is the default name the relay reports in logs, metrics and health checks.
const ServiceName = "location-relay"

// Enum для роли пользователя
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	UserRoleUser    UserRole = "user"
	UserRoleCourier UserRole = "courier"
	UserRoleAdmin   UserRole = "admin"
)

// CloseReason tells why the relay tore a connection down.
type CloseReason string

func (r CloseReason) String() string {
	return string(r)
}

const (
	CloseMissingParams  CloseReason = "missing_params"
	CloseUnauthorized   CloseReason = "unauthorized"
	CloseInvalidMessage CloseReason = "invalid_message"
	CloseClientGone     CloseReason = "client_gone"
	CloseShutdown       CloseReason = "shutdown"
	CloseInternalError  CloseReason = "internal_error"
)
