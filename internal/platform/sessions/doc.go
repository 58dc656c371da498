// Package sessions stores revoked session token ids in Redis so logout takes
// effect across every server instance.
package sessions
