// Package bootenv derives the boot loader environment variables that expose
// the factory configuration to the operating system.
package bootenv

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ssargent/factoryconfig/pkg/store"
)

// Variable names understood by the board boot scripts.
const (
	EthAddr   = "ethaddr"
	Eth1Addr  = "eth1addr"
	RtcCal    = "rtccal"
	ModelNum  = "clmodelnum"
	SerialNum = "serial#"
)

// Env is a set of environment variables.
type Env map[string]string

// Keys returns the variable names sorted.
func (e Env) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compute returns the variables fc implies. MAC addresses are only exported
// when they are valid unicast addresses; the model only when set; the serial
// only when programmed. Known blocks are materialized as a side effect.
func Compute(fc *store.FactoryConfig) (Env, error) {
	env := Env{}

	if mac := fc.Base.MAC; mac.IsValidEthernet() {
		env[EthAddr] = mac.EnvString()
	}

	mac2, err := fc.SecondaryMAC()
	if err != nil {
		return nil, fmt.Errorf("second mac: %w", err)
	}
	if mac2.IsValidEthernet() {
		env[Eth1Addr] = mac2.EnvString()
	}

	cal, err := fc.RtcCalibration()
	if err != nil {
		return nil, fmt.Errorf("rtc calibration: %w", err)
	}
	env[RtcCal] = strconv.FormatInt(int64(cal), 10)

	if model := fc.Base.Model(); model != "" {
		env[ModelNum] = model
	}
	if fc.Base.SerialNumber != 0 {
		env[SerialNum] = strconv.FormatUint(uint64(fc.Base.SerialNumber), 10)
	}
	return env, nil
}

// Changes returns the entries of want whose value differs from current.
// Variables that already hold the computed value are not rewritten.
func Changes(want, current Env) Env {
	out := Env{}
	for k, v := range want {
		if cur, ok := current[k]; ok && cur == v {
			continue
		}
		out[k] = v
	}
	return out
}

// ParsePrintenv reads `fw_printenv` output (name=value per line).
func ParsePrintenv(r io.Reader) (Env, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	env := Env{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed environment line %q", line)
		}
		env[name] = value
	}
	return env, nil
}

// WriteScript writes env as a `fw_setenv -s` script, one "name value" line
// per variable in name order.
func WriteScript(w io.Writer, env Env) error {
	for _, k := range env.Keys() {
		if _, err := fmt.Fprintf(w, "%s %s\n", k, env[k]); err != nil {
			return err
		}
	}
	return nil
}
