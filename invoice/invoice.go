// Package invoice decodes the BOLT11 payment requests produced by every
// node kind under test.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
)

// RegtestPrefix is the human readable prefix of regtest invoices.
const RegtestPrefix = "lnbcrt"

type Decoded struct {
	Bolt11      string
	PaymentHash [32]byte
	AmountMsat  lnwire.MilliSatoshi
	Destination node.ID
	Description string
	Timestamp   time.Time
	Expiry      time.Duration
}

// Ref converts the decoded invoice into the value passed to Send and
// AddHTLC.
func (d *Decoded) Ref() *node.InvoiceRef {
	return &node.InvoiceRef{
		Bolt11:      d.Bolt11,
		PaymentHash: d.PaymentHash,
		AmountMsat:  d.AmountMsat,
	}
}

// HRP returns the bech32 human readable part of a payment request.
func HRP(bolt11 string) (string, error) {
	hrp, _, err := bech32.DecodeNoLimit(strings.TrimSpace(bolt11))
	if err != nil {
		return "", fmt.Errorf("bech32 decode: %w", err)
	}
	return hrp, nil
}

// Decode parses a regtest payment request.
func Decode(bolt11 string) (*Decoded, error) {
	bolt11 = strings.TrimSpace(bolt11)
	hrp, err := HRP(bolt11)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(hrp, RegtestPrefix) {
		return nil, fmt.Errorf("not a regtest invoice: prefix %q", hrp)
	}

	inv, err := zpay32.Decode(bolt11, &chaincfg.RegressionNetParams)
	if err != nil {
		return nil, fmt.Errorf("zpay32.Decode() %w", err)
	}

	d := &Decoded{
		Bolt11:    bolt11,
		Timestamp: inv.Timestamp,
		Expiry:    inv.Expiry(),
	}
	if inv.PaymentHash != nil {
		d.PaymentHash = *inv.PaymentHash
	}
	if inv.MilliSat != nil {
		d.AmountMsat = *inv.MilliSat
	}
	if inv.Description != nil {
		d.Description = *inv.Description
	}
	if inv.Destination != nil {
		d.Destination, err = node.IDFromBytes(inv.Destination.SerializeCompressed())
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Ref decodes bolt11 and returns the reference handed to payers. A backend
// that returned its own payment hash can pass it in to cross check.
func Ref(bolt11 string, expectedHash []byte) (*node.InvoiceRef, error) {
	d, err := Decode(bolt11)
	if err != nil {
		return nil, node.Protocol("invoice", "%v", err)
	}
	if len(expectedHash) > 0 && string(expectedHash) != string(d.PaymentHash[:]) {
		return nil, node.Protocol("invoice", "payment hash mismatch: %x != %x", expectedHash, d.PaymentHash)
	}
	return d.Ref(), nil
}
