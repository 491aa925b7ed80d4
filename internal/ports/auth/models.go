package auth

// Claims representa la identidad del usuario que hace el request.
// El historial y el estado de sesión se particionan por UserID.
type Claims struct {
	UserID    string
	Email     string
	Anonymous bool
}
