// Package auth implements the access gate for the status API.
//
// Callers present an HS256 JWT whose role claim names one of three
// access levels, lowest first: operator, programmer, administrator.
// A route declares the minimum level it needs; higher levels pass.
//
//	token, _ := auth.GenerateAccessToken("console", auth.RoleOperator, secret, 60)
//	claims, err := auth.ParseToken(token, secret)
//	if err == nil && claims.Role.Allows(auth.RoleOperator) {
//	    // serve
//	}
package auth
