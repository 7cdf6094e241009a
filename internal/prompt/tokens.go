package prompt

// EstimateTokens approximates the token count of text for logging and
// size-policy decisions, using the 1 token ~= 4 characters heuristic.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}
