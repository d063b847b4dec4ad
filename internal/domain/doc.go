// Package domain contains the core entities of the school registry (users,
// roles, profiles, students) and the validation error types shared by the
// validation, service and api layers. It has no knowledge of storage or
// transport.
package domain
