// Package reqctx carries request-scoped values across the storefront.
//
// Values are stored under private keys and read through typed accessors:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: "abc-123"})
//	ctx = reqctx.WithOperator(ctx, reqctx.Operator{Token: token})
//
// # Contracts
//
//   - RequestMeta is set by HTTP middleware for every request
//   - Operator is set only on dashboard routes, after the session cookie was found
//   - The outbound transport reads both: the request id is forwarded and the
//     operator token becomes the Bearer credential
package reqctx
