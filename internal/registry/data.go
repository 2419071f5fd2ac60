package registry

const zeroAddress = "0x0000000000000000000000000000000000000000"

var chains = []Chain{
	{ID: ChainWorld, Name: "Worldchain", Type: ChainTypeEVM, RPCURL: "https://worldchain.drpc.org", Icon: "/chains/world.png", NativeChainID: 480},
	{ID: ChainBase, Name: "Base", Type: ChainTypeEVM, RPCURL: "https://base.meowrpc.com", Icon: "/chains/base.png", NativeChainID: 8453},
	{ID: ChainArbitrum, Name: "Arbitrum", Type: ChainTypeEVM, RPCURL: "https://arbitrum.drpc.org", Icon: "/chains/arbitrum.png", NativeChainID: 42161},
	{ID: ChainOptimism, Name: "Optimism", Type: ChainTypeEVM, RPCURL: "https://0xrpc.io/op", Icon: "/chains/optimism.png", NativeChainID: 10},
	{ID: ChainFuel, Name: "Fuel", Type: ChainTypeFuel, RPCURL: "https://mainnet.fuel.network/v1/graphql", Icon: "/chains/fuel.png"},
	{ID: ChainSolana, Name: "Solana", Type: ChainTypeSolana, RPCURL: "https://api.mainnet-beta.solana.com", Icon: "/chains/solana.png"},
}

var tokens = []Token{
	{
		Symbol: "WLD",
		Name:   "Worldcoin",
		Icon:   "/tokens/wld.png",
		Chains: []TokenChain{
			{Chain: ChainWorld, Address: "0x2cFc85d8E48F8EAB294be644d9E25C3030863003", Decimals: 18},
			{Chain: ChainOptimism, Address: "0xdC6fF44d5d932Cbd77B52E5612Ba0529DC6226F1", Decimals: 18},
		},
	},
	{
		Symbol: "USDC",
		Name:   "USD Coin",
		Icon:   "/tokens/usdc.png",
		Chains: []TokenChain{
			{Chain: ChainArbitrum, Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Decimals: 6},
			{Chain: ChainBase, Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6},
			{Chain: ChainFuel, Address: "0x286c479da40dc953bddc3bb4c453b608bba2e0ac483b077bd475174115395e6b", Decimals: 6},
			{Chain: ChainOptimism, Address: "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85", Decimals: 6},
			{Chain: ChainSolana, Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
			{Chain: ChainWorld, Address: "0x79A02482A880bCE3F13e09Da970dC34db4CD24d1", Decimals: 6},
		},
	},
	{
		Symbol: "USDT",
		Name:   "Tether USD",
		Icon:   "/tokens/usdt.png",
		Chains: []TokenChain{
			{Chain: ChainSolana, Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
			{Chain: ChainArbitrum, Address: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", Decimals: 6},
			{Chain: ChainOptimism, Address: "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58", Decimals: 6},
			{Chain: ChainBase, Address: "0xfde4C96c8593536E31F229EA8f37b2ADa2699bb2", Decimals: 6},
			{Chain: ChainFuel, Address: "0xa0265fb5c32f6e8db3197af3c7eb05c48ae373605b8165b6f4a51c5b0ba4812e", Decimals: 6},
		},
	},
	{
		Symbol: "SOL",
		Name:   "Solana",
		Icon:   "/tokens/sol.png",
		Chains: []TokenChain{
			{Chain: ChainSolana, Address: "So11111111111111111111111111111111111111111", Decimals: 9, IsNative: true},
		},
	},
	{
		Symbol: "FUEL",
		Name:   "Fuel",
		Icon:   "/tokens/fuel.png",
		Chains: []TokenChain{
			{Chain: ChainFuel, Address: "0x1d5d97005e41cae2187a895fd8eab0506111e0e2f3331cd3912c15c24e3c1d82", Decimals: 9},
		},
	},
	{
		Symbol: "ETH",
		Name:   "Ethereum",
		Icon:   "/tokens/eth.png",
		Chains: []TokenChain{
			{Chain: ChainArbitrum, Address: zeroAddress, Decimals: 18, IsNative: true},
			{Chain: ChainOptimism, Address: zeroAddress, Decimals: 18, IsNative: true},
			{Chain: ChainBase, Address: zeroAddress, Decimals: 18, IsNative: true},
			{Chain: ChainFuel, Address: "0xf8f8b6283d7fa5b672b530cbb84fcccb4ff8dc40f8176ef4544ddb1f1952ad07", Decimals: 9, IsNative: true},
			{Chain: ChainWorld, Address: zeroAddress, Decimals: 18, IsNative: true},
		},
	},
}
