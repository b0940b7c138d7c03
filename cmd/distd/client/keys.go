package client

import (
	"bytes"
	"io/ioutil"
	"os"

	"github.com/iov-one/weave/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
)

// KeyPerm is the file permissions for saved private keys
const KeyPerm = 0600

type PrivateKey = crypto.PrivateKey

// GenPrivateKey creates a new random key.
func GenPrivateKey() *PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewPrivateKey wraps a raw ed25519 key, that is the seed followed by the
// public key.
func NewPrivateKey(raw ed25519.PrivateKey) (*PrivateKey, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid key length %d", len(raw))
	}
	if !bytes.Equal(ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize]), raw) {
		return nil, errors.New("public key does not match the seed")
	}
	key := &PrivateKey{
		Priv: &crypto.PrivateKey_Ed25519{Ed25519: append([]byte(nil), raw...)},
	}
	return key, nil
}

// LoadPrivateKey reads a key file written by SavePrivateKey. The file
// content is the raw ed25519 key.
func LoadPrivateKey(filename string) (*PrivateKey, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %q", filename)
	}
	key, err := NewPrivateKey(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "key file %q", filename)
	}
	return key, nil
}

// SavePrivateKey writes the raw ed25519 key to the named file.
//
// Refuses to overwrite a file unless force is true
func SavePrivateKey(key *PrivateKey, filename string, force bool) error {
	raw := key.GetEd25519()
	if len(raw) == 0 {
		return errors.New("only ed25519 keys can be saved")
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	fd, err := os.OpenFile(filename, flags, KeyPerm)
	if err != nil {
		if os.IsExist(err) {
			return errors.Errorf("refusing to overwrite: %s", filename)
		}
		return errors.Wrap(err, "open key file")
	}
	if _, err := fd.Write(raw); err != nil {
		fd.Close()
		return errors.Wrap(err, "write key")
	}
	return fd.Close()
}
