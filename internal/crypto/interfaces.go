package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/cipher_mock.go -package=mock

// Cipher is the symmetric encryption capability the vault depends on. The
// vault never refers to a concrete algorithm, so a different cipher can be
// plugged in without touching callers.
//
// Implementations must satisfy the round-trip law
// Decrypt(Encrypt(p, k), k) == p for every non-empty key k and every
// plaintext p, including an empty one, and must fail with [ErrInvalidKey]
// when key is empty.
type Cipher interface {
	// Encrypt returns the ciphertext of plaintext under key.
	Encrypt(plaintext, key []byte) ([]byte, error)

	// Decrypt returns the plaintext of ciphertext under key.
	Decrypt(ciphertext, key []byte) ([]byte, error)
}
