package entity

import "encoding/json"

type CredentialKind string

const (
	CredentialKindPassword CredentialKind = "password"
	CredentialKindOAuth    CredentialKind = "oauth"
	CredentialKindToken    CredentialKind = "token"
	CredentialKindURL      CredentialKind = "url"
)

// Credential is authentication material owned by the orchestrator. It is
// passed to plugins untouched.
type Credential struct {
	Kind         CredentialKind  `json:"kind"`
	Login        *string         `json:"login,omitempty"`
	Password     *string         `json:"password,omitempty"`
	Settings     json.RawMessage `json:"settings,omitempty"`
	UserRef      *string         `json:"userRef,omitempty"`
	RefreshToken *string         `json:"refreshToken,omitempty"`
}

// RequestWithCredential hands a request to a plugin together with optional
// credential. Savable tells whether the request returned by the plugin may be
// kept by the orchestrator for reuse.
type RequestWithCredential struct {
	Request    Request     `json:"request"`
	Credential *Credential `json:"credential,omitempty"`
	Savable    bool        `json:"savable"`
}
