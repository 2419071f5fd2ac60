package main

import "github.com/Trustflow-Network-Labs/sentient-wallet/internal/cmd"

func main() {
	cmd.Execute()
}
