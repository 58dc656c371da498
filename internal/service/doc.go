// Package service contains the business rules of the task manager. Services
// validate input, enforce ownership and run multi-row writes in a single
// transaction on top of the store interfaces.
//
// Services never know about HTTP. They report expected conditions with
// sentinel errors (store.ErrTaskNotFound, ErrNotOwned, domain.ErrValidation,
// ...) that the API layer maps to status codes.
package service
