package btc

import "testing"

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		network string
		wantErr bool
	}{
		{"legacy mainnet", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "mainnet", false},
		{"p2sh mainnet", "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", "mainnet", false},
		{"bech32 mainnet", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", "mainnet", false},
		{"bech32 testnet", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", "testnet", false},
		{"empty", "", "mainnet", true},
		{"whitespace", "   ", "mainnet", true},
		{"garbage", "notanaddress", "mainnet", true},
		{"truncated bech32", "bc1snafas", "mainnet", true},
		{"bad checksum", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb", "mainnet", true},
		{"testnet addr on mainnet", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", "mainnet", true},
		{"unknown network", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "moonnet", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address, tt.network)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q, %q) error = %v, wantErr %v", tt.address, tt.network, err, tt.wantErr)
			}
		})
	}
}

func TestChainParamsDefaultsToMainnet(t *testing.T) {
	params, err := ChainParams("")
	if err != nil {
		t.Fatalf("ChainParams(\"\"): %v", err)
	}
	if params.Name != "mainnet" {
		t.Errorf("expected mainnet params, got %s", params.Name)
	}
}
