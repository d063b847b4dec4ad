// Package api exposes the school management services over HTTP. Handlers
// decode and validate requests, call the service layer and translate its
// errors into status codes and safe messages.
package api
