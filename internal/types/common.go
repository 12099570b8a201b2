// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package types

// HTTP Header Constants
const (
	HeaderUID           = "uid"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-ID"
)

// Authentication Constants
const (
	BearerPrefix      = "Bearer "
	AccessTokenCookie = "access_token"
	DefaultClaimKey   = "claim"
)

// Fiber locals keys
const (
	// UserCtxName holds the verified UserContext.
	UserCtxName = "user"
	// RequestIDLocal holds the request id assigned by the requestid middleware.
	RequestIDLocal = "request_id"
)

// UserRole is the default system role of a verified caller.
const UserRole = "user"
