package main

import "github.com/NethermindEth/staking-sidecar/cmd"

func main() {
	cmd.Execute()
}
