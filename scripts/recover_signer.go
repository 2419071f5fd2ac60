package main

import (
	"fmt"
	"os"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/identity"
)

func RunRecoverSigner(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: go run ./scripts recover-signer <message> <signature>")
		fmt.Println("")
		fmt.Println("Prints the address whose key signed the EIP-191 personal message.")
		os.Exit(1)
	}

	address, err := identity.RecoverSigner(args[0], args[1])
	if err != nil {
		fmt.Printf("Failed to recover signer: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(address)
}
