package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/distributor/cmd/distd/client"
	"github.com/stellar/go/exp/crypto/derivation"
	"golang.org/x/crypto/ed25519"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.

When both a seed and a derivation path are provided, the key is derived
deterministically using SLIP-0010. Otherwise a random key is generated.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(), keyPathUsage)
		seedFl    = fl.String("seed", "", "Optional hex encoded seed that the key is derived from.")
		pathFl    = fl.String("path", "", "Derivation path used together with the seed, for example \"m/44'/330'/0'\".")
	)
	fl.Parse(args)

	if (*seedFl == "") != (*pathFl == "") {
		flagDie("-seed and -path must be used together")
	}

	var priv ed25519.PrivateKey
	if *seedFl != "" {
		seed, err := hex.DecodeString(*seedFl)
		if err != nil {
			return fmt.Errorf("cannot decode seed: %s", err)
		}
		if priv, err = deriveKey(seed, *pathFl); err != nil {
			return err
		}
	} else {
		var err error
		if _, priv, err = ed25519.GenerateKey(nil); err != nil {
			return fmt.Errorf("cannot generate ed25519 key: %s", err)
		}
	}

	key, err := client.NewPrivateKey(priv)
	if err != nil {
		return err
	}
	// Already existing private key is never overwritten. User must
	// manually delete it first.
	if err := client.SavePrivateKey(key, *keyPathFl, false); err != nil {
		return fmt.Errorf("cannot save private key: %s", err)
	}
	return nil
}

// deriveKey returns the ed25519 private key derived from given seed using
// given path.
func deriveKey(seed []byte, path string) (ed25519.PrivateKey, error) {
	if len(seed) == 0 {
		return nil, errors.New("empty seed")
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, fmt.Errorf("cannot derive key using path %q: %s", path, err)
	}
	pub, err := k.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("cannot derive public key: %s", err)
	}
	return ed25519.PrivateKey(append(k.Key, pub...)), nil
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the hex address associated with your private key. When a bech32
prefix is given, the bech32 representation is printed as well.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(), keyPathUsage)
		prefixFl  = fl.String("bech32-prefix", "", "Optional human readable part of the bech32 address, for example \"terra\".")
	)
	fl.Parse(args)

	key, err := client.LoadPrivateKey(*keyPathFl)
	if err != nil {
		return err
	}
	addr := key.PublicKey().Address()
	if _, err := fmt.Fprintln(output, addr); err != nil {
		return err
	}
	if *prefixFl == "" {
		return nil
	}
	b, err := toBech32(*prefixFl, addr)
	if err != nil {
		return fmt.Errorf("cannot encode bech32 address: %s", err)
	}
	_, err = fmt.Fprintln(output, b)
	return err
}

// toBech32 encodes given raw address using the bech32 format.
func toBech32(hrp string, raw []byte) (string, error) {
	data, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("cannot convert bits: %s", err)
	}
	return bech32.Encode(hrp, data)
}

// fromBech32 returns the human readable part and the raw address of given
// bech32 encoded address.
func fromBech32(enc string) (string, []byte, error) {
	hrp, data, err := bech32.Decode(enc)
	if err != nil {
		return "", nil, err
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("cannot convert bits: %s", err)
	}
	return hrp, raw, nil
}
