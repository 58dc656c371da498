// Package auth issues and validates session tokens and hashes passwords.
package auth
