// Package mocks provides hand-written test doubles shared by several test packages.
//
// Each mock has one function field per method. A nil field falls back to the
// mock's default values, so tests only set what they care about:
//
//	jwtService := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: 1, ID: "jti"}, nil
//	    },
//	}
//
// Package-local interfaces are mocked inside their own packages with testify's mock.Mock.
package mocks
