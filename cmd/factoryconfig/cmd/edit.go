package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ssargent/factoryconfig/pkg/codec"
	"github.com/ssargent/factoryconfig/pkg/store"
)

// abortToken ends an interactive edit; fields answered before it are kept.
const abortToken = "."

// prompt is one interactive field. apply receives the non-empty answer.
type prompt struct {
	label   string
	current func() (string, error)
	apply   func(answer string) error
}

func editPrompts(fc *store.FactoryConfig) []prompt {
	return []prompt{
		{
			label:   "MAC Address",
			current: func() (string, error) { return fc.Base.MAC.String(), nil },
			apply: func(a string) error {
				mac, err := codec.ParseMAC(a)
				if err != nil {
					return err
				}
				return fc.Apply(store.Fields{MAC: &mac})
			},
		},
		{
			label: "MAC Address 2",
			current: func() (string, error) {
				mac, err := fc.SecondaryMAC()
				return mac.String(), err
			},
			apply: func(a string) error {
				mac, err := codec.ParseMAC(a)
				if err != nil {
					return err
				}
				return fc.Apply(store.Fields{SecondaryMAC: &mac})
			},
		},
		{
			label:   "Serial Number",
			current: func() (string, error) { return strconv.FormatUint(uint64(fc.Base.SerialNumber), 10), nil },
			apply: func(a string) error {
				// Only a positive number replaces the serial.
				n, err := strconv.ParseUint(a, 10, 32)
				if err != nil || n == 0 {
					return nil
				}
				serial := uint32(n)
				return fc.Apply(store.Fields{SerialNumber: &serial})
			},
		},
		{
			label:   "Model Number",
			current: func() (string, error) { return fc.Base.Model(), nil },
			apply: func(a string) error {
				return fc.Apply(store.Fields{Model: &a})
			},
		},
		{
			label: "RTC Cal Value",
			current: func() (string, error) {
				v, err := fc.RtcCalibration()
				return strconv.FormatInt(int64(v), 10), err
			},
			apply: func(a string) error {
				n, err := strconv.ParseInt(a, 10, 32)
				if err != nil {
					return fmt.Errorf("RTC calibration %q: %w", a, err)
				}
				cal := int32(n)
				return fc.Apply(store.Fields{RtcCalibration: &cal})
			},
		},
	}
}

// editInteractive walks the editable fields. An empty answer keeps the
// current value; "." stops the session and leaves later fields untouched.
// Invalid answers are reported and asked again.
func editInteractive(in io.Reader, out io.Writer, fc *store.FactoryConfig) (aborted bool, err error) {
	r := bufio.NewReader(in)
	fmt.Fprintf(out, "Enter '%s' to abort; press return to keep a value.\n", abortToken)

	for _, p := range editPrompts(fc) {
		for {
			cur, err := p.current()
			if err != nil {
				return false, err
			}
			fmt.Fprintf(out, "%-14s [%s] : ", p.label, cur)

			line, rerr := r.ReadString('\n')
			answer := strings.TrimSpace(line)
			if rerr != nil && rerr != io.EOF {
				return false, rerr
			}
			if answer == abortToken {
				fmt.Fprintln(out)
				return true, nil
			}
			if answer != "" {
				if err := p.apply(answer); err != nil {
					fmt.Fprintf(out, "\n  %v\n", err)
					if rerr == io.EOF {
						return false, err
					}
					continue
				}
			}
			if rerr == io.EOF {
				fmt.Fprintln(out)
				return true, nil
			}
			break
		}
	}
	return false, nil
}
