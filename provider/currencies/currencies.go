package currencies

import "github.com/sig-0/fxwatch/storage/types"

var (
	USD types.Currency = "USD"
	CNY types.Currency = "CNY"
)

// Aliases are the known labels a quotation page may use instead of the ISO code
var Aliases = map[types.Currency][]string{
	USD: {"US DOLLAR", "美元"},
}
