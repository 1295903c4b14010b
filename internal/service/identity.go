package service

import (
	"context"
	"strings"
)

// Identity resuelve el usuario autenticado de la solicitud en curso.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

type userIDKey struct{}

// WithUserID guarda el id autenticado en el contexto de la solicitud.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// ContextIdentity lee el id que dejó el middleware de autenticación.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}
