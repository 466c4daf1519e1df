package actions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Intent predicates and extractors. All of these are pure text functions so
// they can be tested independently of the handlers they gate.

// addressPattern matches a literal EVM address: 0x followed by exactly 40 hex
// characters. The word boundaries reject longer hex runs rather than taking
// a 40-char prefix of them.
var addressPattern = regexp.MustCompile(`\b0x[0-9a-fA-F]{40}\b`)

// ExtractAddress returns the first well-formed EVM address in the text.
func ExtractAddress(text string) (common.Address, bool) {
	match := addressPattern.FindString(text)
	if match == "" {
		return common.Address{}, false
	}
	return common.HexToAddress(match), true
}

// ExtractAmount returns the decimal amount tied to the given token symbol,
// e.g. "0.5" from "enviar 0.5 MNT a 0x...". The amount and symbol must
// appear together; a bare number does not count.
func ExtractAmount(text, symbol string) (string, bool) {
	pattern := regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]+)?)\s*` + regexp.QuoteMeta(symbol) + `\b`)
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// Fixed phrase sets, Spanish and English. Matching is lowercase substring.
var (
	creationPhrases = []string{
		"crear wallet", "crea wallet", "crear una wallet", "crear billetera",
		"nueva wallet", "create wallet", "create a wallet", "new wallet",
		"make me a wallet",
	}
	balancePhrases = []string{
		"balance", "saldo", "cuanto tengo", "cuánto tengo", "how much do i have",
	}
	transferVerbs = []string{
		"enviar", "envia", "envía", "transferir", "transfiere", "send", "transfer",
	}
)

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// WantsWalletCreation reports wallet-provisioning intent.
func WantsWalletCreation(text string) bool {
	return containsAny(strings.ToLower(text), creationPhrases)
}

// WantsBalance reports balance-check intent.
func WantsBalance(text string) bool {
	return containsAny(strings.ToLower(text), balancePhrases)
}

// WantsTransfer reports transfer intent for the given token symbol: a
// transfer verb plus a mention of the symbol. The handler re-parses the
// message strictly; this predicate only routes it.
func WantsTransfer(text, symbol string) bool {
	lower := strings.ToLower(text)
	return containsAny(lower, transferVerbs) && strings.Contains(lower, strings.ToLower(symbol))
}

// parseTransferIntent extracts the destination and amount for a transfer in
// one pass. Missing pieces are terminal; there is no partial-intent retry.
func parseTransferIntent(text, symbol string) (common.Address, string, error) {
	to, okAddr := ExtractAddress(text)
	amount, okAmount := ExtractAmount(text, symbol)
	if !okAddr && !okAmount {
		return common.Address{}, "", fmt.Errorf("%w: need a destination address and an amount in %s", ErrIntentUnparseable, symbol)
	}
	if !okAddr {
		return common.Address{}, "", fmt.Errorf("%w: no valid destination address found", ErrIntentUnparseable)
	}
	if !okAmount {
		return common.Address{}, "", fmt.Errorf("%w: no amount in %s found", ErrIntentUnparseable, symbol)
	}
	return to, amount, nil
}
