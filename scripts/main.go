package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "list-envelopes":
		RunListEnvelopes(args)
	case "delete-envelope":
		RunDeleteEnvelope(args)
	case "recover-signer":
		RunRecoverSigner(args)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: go run ./scripts <command> [args...]")
	fmt.Println("")
	fmt.Println("Available commands:")
	fmt.Println("  list-envelopes [db_path]")
	fmt.Println("    List the PIN envelopes stored in the wallet database")
	fmt.Println("    Example: go run ./scripts list-envelopes")
	fmt.Println("")
	fmt.Println("  delete-envelope <auth_address> [db_path]")
	fmt.Println("    Remove the PIN envelope of one identity, forcing PIN setup on next unlock")
	fmt.Println("    Example: go run ./scripts delete-envelope 0xabc...")
	fmt.Println("")
	fmt.Println("  recover-signer <message> <signature>")
	fmt.Println("    Recover the address that produced a personal_sign signature")
	fmt.Println("    Example: go run ./scripts recover-signer \"hello\" 0x...")
}
