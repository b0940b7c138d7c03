package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *weave.Address {
	var a weave.Address
	if defaultVal != "" {
		var err error
		a, err = weave.ParseAddress(defaultVal)
		if err != nil {
			flagDie("Cannot parse %q weave.Address flag value. %s", name, err)
		}
	}
	fl.Var(&flagaddress{a: &a}, name, usage)
	return &a
}

type flagaddress struct {
	a *weave.Address
}

func (f *flagaddress) String() string {
	if f.a == nil || len(*f.a) == 0 {
		return ""
	}
	return f.a.String()
}

func (f *flagaddress) Set(raw string) error {
	a, err := weave.ParseAddress(raw)
	if err != nil {
		return err
	}
	*f.a = a
	return nil
}

// flCoin returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flCoin(fl *flag.FlagSet, name, defaultVal, usage string) *coin.Coin {
	var c coin.Coin
	if defaultVal != "" {
		var err error
		c, err = coin.ParseHumanFormat(defaultVal)
		if err != nil {
			flagDie("Cannot parse %q weave.Coin flag value. %s", name, err)
		}
	}
	fl.Var(&c, name, usage)
	return &c
}

// flPercent returns a fraction declared as a decimal value, for example
// "0.25". Same as other flag helpers, an invalid default value terminates the
// process.
func flPercent(fl *flag.FlagSet, name, defaultVal, usage string) *weave.Fraction {
	var f weave.Fraction
	if defaultVal != "" {
		var err error
		f, err = distributor.ParsePercent(defaultVal)
		if err != nil {
			flagDie("Cannot parse %q percent flag value. %s", name, err)
		}
	}
	fl.Var(&flagpercent{f: &f}, name, usage)
	return &f
}

type flagpercent struct {
	f *weave.Fraction
}

func (p *flagpercent) String() string {
	if p.f == nil {
		return ""
	}
	return distributor.FormatPercent(*p.f)
}

func (p *flagpercent) Set(raw string) error {
	f, err := distributor.ParsePercent(raw)
	if err != nil {
		return err
	}
	*p.f = f
	return nil
}

// flFraction returns a fraction declared in the "numerator/denominator" form.
func flFraction(fl *flag.FlagSet, name, defaultVal, usage string) *weave.Fraction {
	var f weave.Fraction
	if defaultVal != "" {
		parsed, err := weave.ParseFractionString(defaultVal)
		if err != nil {
			flagDie("Cannot parse %q fraction flag value. %s", name, err)
		}
		f = *parsed
	}
	fl.Var(&flagfraction{f: &f}, name, usage)
	return &f
}

type flagfraction struct {
	f *weave.Fraction
}

func (p *flagfraction) String() string {
	if p.f == nil || p.f.Denominator == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", p.f.Numerator, p.f.Denominator)
}

func (p *flagfraction) Set(raw string) error {
	f, err := weave.ParseFractionString(raw)
	if err != nil {
		return err
	}
	*p.f = *f
	return nil
}

// flagDie terminates the program when a flag parsing was not successful. This
// is a variadic function for the convenience of use.
func flagDie(description string, args ...interface{}) {
	s := fmt.Sprintf(description, args...)
	fmt.Fprintln(os.Stderr, s)
	os.Exit(2)
}
