// Package middleware wraps session stores with cross-cutting behaviour.
package middleware

import "github.com/helpcar/quotechat/pkg/ports"

// Middleware wraps a SessionStore to add behaviour.
type Middleware func(ports.SessionStore) ports.SessionStore
