// Package middleware provides HTTP middleware components that wrap the
// dispatch http.Handler: CORS, panic recovery, request logging, and a
// composable middleware stack.
//
// Basic usage:
//
//	stack := middleware.NewStack(
//		middleware.CORS(),
//		middleware.Logger(logging.Default()),
//		middleware.Recovery(errorHandler),
//	)
//	handler := stack.Then(dispatcher)
package middleware
