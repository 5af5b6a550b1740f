package aleo

// Staking program and the functions of it that change staking mappings.
const (
	CreditsProgram = "credits.aleo"

	FunctionBondPublic        = "bond_public"
	FunctionUnbondPublic      = "unbond_public"
	FunctionClaimUnbondPublic = "claim_unbond_public"
)

// Mapping names of the credits program.
const (
	MappingBonded    = "bonded"
	MappingUnbonding = "unbonding"
	MappingWithdraw  = "withdraw"
)

type Network string

const (
	Network_Mainnet Network = "mainnet"
	Network_Testnet Network = "testnet"
	Network_Canary  Network = "canary"
)

func ParseNetwork(n string) Network {
	switch n {
	case "testnet":
		return Network_Testnet
	case "canary":
		return Network_Canary
	default:
		return Network_Mainnet
	}
}
