// Package auth provides authentication and authorization for the application.
//
// Readers authenticate with HS256 bearer tokens issued by the login
// endpoints. Tokens have a fixed lifetime (AUTH_TOKEN_EXPIRY, 30 days by
// default) and there is no refresh flow. The admin back-office may instead
// log in with a form and hold a cookie session stored in SQLite; cookie
// requests are CSRF protected.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<hex>          # Auto-generated if empty (tokens die on restart)
//	AUTH_TOKEN_EXPIRY=720h         # Bearer token lifetime
//	AUTH_SESSION_SECRET=<hex>      # Session and CSRF key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h      # Admin session duration
//	AUTH_BCRYPT_COST=12            # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true       # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5      # Failures before the account locks
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager)
//	router.Use(authMiddleware.Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c) // AnonymousUserID on public routes
package auth
