package common

// AuthHeaderName is the HTTP header carrying the bearer session token.
const AuthHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in AuthHeaderName.
const BearerPrefix = "Bearer "

// AuthGenericMessage is the single user-facing message for both "identifier
// not found" and "credential mismatch", to avoid identifier enumeration.
const AuthGenericMessage = "incorrect email or password"
