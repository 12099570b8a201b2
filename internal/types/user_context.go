// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package types

import (
	uuid "github.com/gofrs/uuid"
)

// UserContext is the identity resolved from a verified bearer credential.
type UserContext struct {
	UserID      uuid.UUID `json:"uid"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatar"`
	SystemRole  string    `json:"role"`
	RequestID   string    `json:"-"`
}

// IsAuthenticated reports whether the context carries a user identifier.
func (u UserContext) IsAuthenticated() bool {
	return u.UserID != uuid.Nil
}
