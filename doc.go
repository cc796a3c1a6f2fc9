// Package auth implements account registration, login, logout and password
// activation for the loan catalog service.
//
// User lifecycle:
//   - Register stores a pending account without a password, sends a one time
//     passcode through the configured Notifier and returns a session token.
//     The record is written before the notification goes out; a failed send
//     surfaces as RegistrationFailed and the record is kept.
//   - ActivatePassword hashes the password, flags the account as a user and
//     moves it from pending to updated through UserStateMachine.
//   - Login checks the bcrypt hash and issues a token carrying the full record.
//
// Sessions:
//   - TokenService signs HS256 tokens with a mandatory expiry. Previous
//     secrets can be registered by key id so rotation does not log users out.
//   - Logout adds the raw token to a RevocationRegistry. The jwtware
//     blacklist middleware rejects revoked tokens before routing.
//
// Activity sinks:
//   - ActivitySink receives login, registration, logout, profile and status
//     events. Sinks run best-effort (errors are logged).
package auth
