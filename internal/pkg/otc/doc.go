// Package otc generates numeric one-time codes.
//
// Codes are short-lived shared secrets delivered out of band (SMS or email),
// so they must come from an unpredictable source. The generator here draws
// from crypto/rand; business logic should depend on the Generator interface so
// tests can substitute a deterministic sequence.
package otc
