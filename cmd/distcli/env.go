package main

import (
	"os"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

const defaultTmAddr = "http://localhost:26657"

// tmAddrUsage is shared by all commands that talk to a node.
const tmAddrUsage = "Tendermint node address. You can use DISTCLI_TM_ADDR environment variable to set it."

// keyPathUsage is shared by all commands that read the private key file.
const keyPathUsage = "Path to the private key file. You can use DISTCLI_PRIV_KEY environment variable to set it."

func defaultKeyPath() string {
	return env("DISTCLI_PRIV_KEY", os.Getenv("HOME")+"/.distd.priv.key")
}
