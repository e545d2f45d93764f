// Package auth issues and verifies bearer tokens for the status API.
//
// Tokens are HS256 JWTs signed with api.jwt_secret. They carry a subject
// (who the token was minted for) and an expiry; there is no user store and
// no refresh flow. When no secret is configured the API is open.
package auth
