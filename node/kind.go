package node

import (
	"fmt"
	"strings"
)

// Kind names a Lightning implementation.
type Kind string

const (
	KindCLightning Kind = "lightningd"
	KindLnd        Kind = "lnd"
	KindEclair     Kind = "eclair"
	KindPtarmigan  Kind = "ptarmigan"
	KindElectrum   Kind = "electrum"
)

// AllKinds lists every supported implementation in a stable order.
var AllKinds = []Kind{KindCLightning, KindLnd, KindEclair, KindPtarmigan, KindElectrum}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "clightning", "cln", "c-lightning":
		return KindCLightning, nil
	}
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown implementation %q", s)
}

// ParseKinds parses a comma or space separated list such as the value of
// LIGHTNING_IMPLS.
func ParseKinds(s string) ([]Kind, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	kinds := make([]Kind, 0, len(fields))
	for _, f := range fields {
		k, err := ParseKind(f)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
