// internal/domain/models/authmethods.go
package models

// Stored auth_method values.
const (
	AuthMethodPassword  = "password"
	AuthMethodGoogle    = "google"
	AuthMethodMagicLink = "magiclink"
	AuthMethodPasskey   = "passkey"
)

// AuthMethod represents a way a user can sign in.
type AuthMethod struct {
	Value string // The value stored in the database
	Label string // The display label in the UI
}

// AllAuthMethods contains all supported auth methods with their display labels.
var AllAuthMethods = []AuthMethod{
	{Value: AuthMethodPassword, Label: "Password"},
	{Value: AuthMethodGoogle, Label: "Google"},
	{Value: AuthMethodMagicLink, Label: "Magic Link"},
	{Value: AuthMethodPasskey, Label: "Passkey"},
}

// IsValidAuthMethod checks if a value is a valid auth method.
func IsValidAuthMethod(value string) bool {
	for _, m := range AllAuthMethods {
		if m.Value == value {
			return true
		}
	}
	return false
}
