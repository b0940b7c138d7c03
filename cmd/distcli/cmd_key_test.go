package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/distributor/cmd/distd/client"
	"github.com/iov-one/weave/weavetest/assert"
	"golang.org/x/crypto/ed25519"
)

func TestKeygenAndKeyaddr(t *testing.T) {
	dir, err := ioutil.TempDir("", "distcli")
	if err != nil {
		t.Fatalf("cannot create temporary directory: %s", err)
	}
	defer os.RemoveAll(dir)
	keyPath := filepath.Join(dir, "priv.key")

	if err := cmdKeygen(nil, ioutil.Discard, []string{"-key", keyPath}); err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	if err := cmdKeygen(nil, ioutil.Discard, []string{"-key", keyPath}); err == nil {
		t.Fatal("existing key file must not be overwritten")
	}

	var output bytes.Buffer
	if err := cmdKeyaddr(nil, &output, []string{"-key", keyPath, "-bech32-prefix", "terra"}); err != nil {
		t.Fatalf("cannot print address: %s", err)
	}
	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	assert.Equal(t, 2, len(lines))

	key, err := client.LoadPrivateKey(keyPath)
	if err != nil {
		t.Fatalf("cannot decode private key: %s", err)
	}
	addr := key.PublicKey().Address()
	assert.Equal(t, addr.String(), lines[0])

	hrp, raw, err := fromBech32(lines[1])
	if err != nil {
		t.Fatalf("cannot decode bech32 address: %s", err)
	}
	assert.Equal(t, "terra", hrp)
	assert.Equal(t, []byte(addr), raw)
}

func TestDecodeInvalidPrivateKey(t *testing.T) {
	fd, err := ioutil.TempFile("", "distcli")
	if err != nil {
		t.Fatalf("cannot create temporary file: %s", err)
	}
	defer os.Remove(fd.Name())
	if _, err := fd.Write([]byte("too short")); err != nil {
		t.Fatalf("cannot write: %s", err)
	}
	fd.Close()

	if _, err := client.LoadPrivateKey(fd.Name()); err == nil {
		t.Fatal("want an error for an invalid key length")
	}
}

func TestDeriveKey(t *testing.T) {
	seed := fromHex(t, "d34c1970ae90acf3405f2d99dcaca16d0c7db379f4beafcfdf667b9d69ce350d27f5fb440509dfa79ec883a0510bc9a9614c3d44188881f0c5e402898b4bf3c9")

	first, err := deriveKey(seed, "m/44'/330'/0'")
	if err != nil {
		t.Fatalf("cannot derive key: %s", err)
	}
	again, err := deriveKey(seed, "m/44'/330'/0'")
	if err != nil {
		t.Fatalf("cannot derive key: %s", err)
	}
	assert.Equal(t, first, again)
	assert.Equal(t, ed25519.NewKeyFromSeed(first[:ed25519.SeedSize]), first)

	other, err := deriveKey(seed, "m/44'/330'/1'")
	if err != nil {
		t.Fatalf("cannot derive key: %s", err)
	}
	if bytes.Equal(first, other) {
		t.Fatal("different paths must produce different keys")
	}

	if _, err := deriveKey(seed, "not a path"); err == nil {
		t.Fatal("want an error for an invalid path")
	}
}

func TestKeygenFromSeed(t *testing.T) {
	dir, err := ioutil.TempDir("", "distcli")
	if err != nil {
		t.Fatalf("cannot create temporary directory: %s", err)
	}
	defer os.RemoveAll(dir)
	keyPath := filepath.Join(dir, "priv.key")

	const seed = "d34c1970ae90acf3405f2d99dcaca16d0c7db379f4beafcfdf667b9d69ce350d27f5fb440509dfa79ec883a0510bc9a9614c3d44188881f0c5e402898b4bf3c9"
	args := []string{"-key", keyPath, "-seed", seed, "-path", "m/44'/330'/0'"}
	if err := cmdKeygen(nil, ioutil.Discard, args); err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	raw, err := ioutil.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("cannot read key file: %s", err)
	}
	want, err := deriveKey(fromHex(t, seed), "m/44'/330'/0'")
	if err != nil {
		t.Fatalf("cannot derive key: %s", err)
	}
	assert.Equal(t, []byte(want), raw)
}
