package score

// foldConstant is the multiplier of the score fold. Locked by the game
// client; changing it orphans every stored calculated_score.
const foldConstant = 0x119DE1F3

// Hash32 derives the authoritative leaderboard score from the submitted
// raw score: two multiplicative shift-xor rounds and a final fold.
func Hash32(x uint32) uint32 {
	x = ((x >> 16) ^ x) * foldConstant
	x = ((x >> 16) ^ x) * foldConstant
	return (x >> 16) ^ x
}
