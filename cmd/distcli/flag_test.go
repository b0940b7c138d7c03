package main

import (
	"flag"
	"io/ioutil"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestPercentFlag(t *testing.T) {
	cases := map[string]struct {
		args    []string
		wantErr bool
		wantVal weave.Fraction
	}{
		"default value": {
			args:    nil,
			wantVal: weave.Fraction{Numerator: 1, Denominator: 10},
		},
		"half": {
			args:    []string{"-p", "0.5"},
			wantVal: weave.Fraction{Numerator: 1, Denominator: 2},
		},
		"zero": {
			args:    []string{"-p", "0"},
			wantVal: weave.Fraction{Numerator: 0, Denominator: 1},
		},
		"above one": {
			args:    []string{"-p", "1.5"},
			wantErr: true,
		},
		"not a number": {
			args:    []string{"-p", "half"},
			wantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			fl := flag.NewFlagSet("", flag.ContinueOnError)
			fl.SetOutput(ioutil.Discard)
			p := flPercent(fl, "p", "0.1", "")
			err := fl.Parse(tc.args)
			if hasErr := err != nil; hasErr != tc.wantErr {
				t.Fatalf("returned error value: %+v", err)
			}
			if !tc.wantErr {
				assert.Equal(t, tc.wantVal, *p)
			}
		})
	}
}

func TestFractionFlag(t *testing.T) {
	cases := map[string]struct {
		args    []string
		wantErr bool
		wantVal weave.Fraction
	}{
		"default value": {
			args:    nil,
			wantVal: weave.Fraction{Numerator: 1, Denominator: 100},
		},
		"numerator and denominator": {
			args:    []string{"-f", "3/200"},
			wantVal: weave.Fraction{Numerator: 3, Denominator: 200},
		},
		"numerator only": {
			args:    []string{"-f", "1"},
			wantVal: weave.Fraction{Numerator: 1, Denominator: 1},
		},
		"negative value": {
			args:    []string{"-f", "-1/2"},
			wantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			fl := flag.NewFlagSet("", flag.ContinueOnError)
			fl.SetOutput(ioutil.Discard)
			f := flFraction(fl, "f", "1/100", "")
			err := fl.Parse(tc.args)
			if hasErr := err != nil; hasErr != tc.wantErr {
				t.Fatalf("returned error value: %+v", err)
			}
			if !tc.wantErr {
				assert.Equal(t, tc.wantVal, *f)
			}
		})
	}
}

func TestAddressFlag(t *testing.T) {
	fl := flag.NewFlagSet("", flag.ContinueOnError)
	fl.SetOutput(ioutil.Discard)
	a := flAddress(fl, "a", "", "")

	if err := fl.Parse([]string{"-a", "b1ca7e78f74423ae01da3b51e676934d9105f282"}); err != nil {
		t.Fatalf("cannot parse: %s", err)
	}
	assert.Equal(t, fromHex(t, "b1ca7e78f74423ae01da3b51e676934d9105f282"), []byte(*a))

	fl = flag.NewFlagSet("", flag.ContinueOnError)
	fl.SetOutput(ioutil.Discard)
	flAddress(fl, "a", "", "")
	if err := fl.Parse([]string{"-a", "not an address"}); err == nil {
		t.Fatal("want an error for an invalid address")
	}
}
