// Package auth implements sign in, sessions and account administration.
//
// Every successful sign in opens a row in the sessions table and returns an
// HS256 token naming that row. A token is honored only while:
//   - its signature and expiry verify
//   - the session row it names exists, is active and unexpired
//   - the owning user is active
//
// Deleting the row therefore revokes the token. Logout, password resets and
// deactivating a user all work that way. With Sessions.ExpireIdle a session
// also ends once it goes unused for longer than the site's session timeout.
//
// # Sign in methods
//
// Service.Login checks a local password (argon2id, legacy bcrypt hashes are
// accepted) or, for directory accounts, binds against LDAP. Accounts with two
// factor auth, or every account while the site requires it, receive a six
// digit code by email and finish with Service.VerifyTwoFactor. While that
// challenge is pending it also accepts codes from an enrolled authenticator
// app. GoogleProvider runs the OAuth redirect flow and
// Service.LoginWithIdentity links or creates the account.
//
// # Authorization
//
// Roles are ordered user < admin < super_admin. RequireAuth resolves the
// bearer token and RequirePermission guards admin routes by the role's
// permission set:
//
//	api := app.Group("/api", auth.RequireAuth(sessions))
//	api.Put("/global-settings", auth.RequirePermission(auth.PermSettingsWrite), handler)
package auth
