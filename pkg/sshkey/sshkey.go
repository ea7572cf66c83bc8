package sshkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Pair is a generated OpenSSH key pair in serialized form.
type Pair struct {
	// Private is the key in OpenSSH PEM format.
	Private []byte
	// Public is a single authorized_keys line including the comment.
	Public []byte
}

// Generate creates a new ed25519 key pair with the given comment.
func Generate(comment string) (Pair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to marshal private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to derive public key: %w", err)
	}

	public := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
	if comment != "" {
		public += " " + comment
	}

	return Pair{
		Private: pem.EncodeToMemory(block),
		Public:  []byte(public + "\n"),
	}, nil
}

// ParseAuthorizedKey validates a public key line and returns it in
// normalized authorized_keys form.
func ParseAuthorizedKey(line string) (string, error) {
	pub, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
	if err != nil {
		return "", fmt.Errorf("invalid public key %q: %w", line, err)
	}

	normalized := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub)))
	if comment != "" {
		normalized += " " + comment
	}
	return normalized, nil
}

// KeyData returns the raw key material of a public key line, ignoring any
// options prefix and comment. Two lines with equal key data carry the same
// key.
func KeyData(line string) (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
	if err != nil {
		return "", fmt.Errorf("invalid public key %q: %w", line, err)
	}
	return string(pub.Marshal()), nil
}

// Fingerprint returns the SHA256 fingerprint of a public key line.
func Fingerprint(line string) (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
	if err != nil {
		return "", fmt.Errorf("invalid public key %q: %w", line, err)
	}
	return ssh.FingerprintSHA256(pub), nil
}
