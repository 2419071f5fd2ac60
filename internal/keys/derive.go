package keys

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// SeedSize is the length of a wallet seed in bytes
const SeedSize = 32

// fuelCoinType is the SLIP-44 coin type registered for Fuel
const fuelCoinType = 1179993420

// m/44'/1179993420'/0'/0/0
var fuelDerivationPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + fuelCoinType,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// Seed is the 32-byte secret every chain account is derived from
type Seed [SeedSize]byte

// SeedFromSignature hashes the provider signature string with keccak256
func SeedFromSignature(signature string) Seed {
	var seed Seed
	copy(seed[:], crypto.Keccak256([]byte(signature)))
	return seed
}

type EvmAccount struct {
	Address    string
	PrivateKey *ecdsa.PrivateKey
}

type SolanaAccount struct {
	Address    string
	PrivateKey solana.PrivateKey
}

type FuelAccount struct {
	Address    string
	PrivateKey *btcec.PrivateKey
}

// Bundle groups the accounts of one unlocked wallet
type Bundle struct {
	EVM    *EvmAccount
	Solana *SolanaAccount
	Fuel   *FuelAccount
}

// Addresses returns the public part of the bundle
func (b *Bundle) Addresses() Addresses {
	if b == nil {
		return Addresses{}
	}
	return Addresses{EVM: b.EVM.Address, Solana: b.Solana.Address, Fuel: b.Fuel.Address}
}

// Addresses carries one address per chain type
type Addresses struct {
	EVM    string `json:"evm" yaml:"evm"`
	Solana string `json:"solana" yaml:"solana"`
	Fuel   string `json:"fuel" yaml:"fuel"`
}

func checkSeed(seed []byte) error {
	if len(seed) != SeedSize {
		return fmt.Errorf("%w: got %d", ErrInvalidSeedLength, len(seed))
	}
	return nil
}

// DeriveEvmAccount uses the seed directly as a secp256k1 private key
func DeriveEvmAccount(seed []byte) (*EvmAccount, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	privateKey, err := crypto.ToECDSA(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvmKey, err)
	}

	return &EvmAccount{
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
		PrivateKey: privateKey,
	}, nil
}

// DeriveSolanaAccount expands the seed into an Ed25519 key pair
func DeriveSolanaAccount(seed []byte) (*SolanaAccount, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	privateKey := ed25519.NewKeyFromSeed(seed)
	publicKey := privateKey.Public().(ed25519.PublicKey)

	return &SolanaAccount{
		Address:    base58.Encode(publicKey),
		PrivateKey: solana.PrivateKey(privateKey),
	}, nil
}

// DeriveFuelAccount treats the seed as a BIP32 seed and walks the Fuel path.
// The address is the sha256 of the uncompressed public key without its prefix byte.
func DeriveFuelAccount(seed []byte) (*FuelAccount, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create fuel master key: %w", err)
	}

	for _, index := range fuelDerivationPath {
		if key, err = key.Derive(index); err != nil {
			return nil, fmt.Errorf("failed to derive fuel child %d: %w", index, err)
		}
	}

	privateKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract fuel private key: %w", err)
	}

	publicKey := privateKey.PubKey().SerializeUncompressed()
	digest := sha256.Sum256(publicKey[1:])

	return &FuelAccount{
		Address:    "0x" + hex.EncodeToString(digest[:]),
		PrivateKey: privateKey,
	}, nil
}

// DeriveBundle derives all three accounts or none
func DeriveBundle(seed []byte) (*Bundle, error) {
	evm, err := DeriveEvmAccount(seed)
	if err != nil {
		return nil, err
	}

	sol, err := DeriveSolanaAccount(seed)
	if err != nil {
		return nil, err
	}

	fuel, err := DeriveFuelAccount(seed)
	if err != nil {
		return nil, err
	}

	return &Bundle{EVM: evm, Solana: sol, Fuel: fuel}, nil
}

// BundleFromSignature is SeedFromSignature followed by DeriveBundle
func BundleFromSignature(signature string) (*Bundle, error) {
	seed := SeedFromSignature(signature)
	return DeriveBundle(seed[:])
}
