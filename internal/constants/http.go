package constants

// HTTP Header Names
const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	BearerPrefix        = "Bearer "
)

// Common HTTP Messages
const (
	MsgUnauthorized   = "Unauthorized"
	MsgInvalidRequest = "Invalid request"
	MsgInvalidUserID  = "Invalid user ID"
	MsgUserCreated    = "User created successfully"
	MsgUserUpdated    = "User updated successfully"
	MsgUserDeleted    = "User deleted successfully"
	MsgUserRestored   = "User restored successfully"
	MsgPasswordSet    = "Password updated successfully"
)
