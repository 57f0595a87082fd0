// Package middlewarectx holds the HTTP middlewares of the API and the context
// keys they fill for the handlers.
package middlewarectx

import "context"

// Key is the type of the request context keys set by JWTMiddleware.
type Key string

const (
	// User holds the identity (e-mail or "admin") of the caller.
	User Key = "user"
	// Role holds the role of the caller.
	Role Key = "role"
	// UserUID holds the account id of the caller.
	UserUID Key = "user_uid"
)

// UserUIDFrom returns the account id stored by JWTMiddleware.
func UserUIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserUID).(string)
	return id, ok && id != ""
}
