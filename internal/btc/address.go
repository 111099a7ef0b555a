package btc

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil"
)

// ChainParams resolves a network name from config to chain parameters.
func ChainParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "mainnet", "":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown bitcoin network %q", network)
	}
}

// ValidateAddress checks that address is a well-formed Bitcoin address
// (legacy, P2SH or bech32) belonging to the given network. It validates
// format and checksum only; it does not check anything on chain.
func ValidateAddress(address, network string) error {
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("bitcoin address is empty")
	}

	params, err := ChainParams(network)
	if err != nil {
		return err
	}

	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return fmt.Errorf("decode bitcoin address: %w", err)
	}
	if !addr.IsForNet(params) {
		return fmt.Errorf("bitcoin address is not valid for network %q", network)
	}
	return nil
}
