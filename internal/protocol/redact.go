package protocol

// HiddenCard is the placeholder sent for a hole card belonging to a
// connection other than its owner.
const HiddenCard = "??"

// CardStrings renders a slice of two-character card codes from any
// stringer-shaped card slice.
func CardStrings[T interface{ String() string }](cards []T) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// RedactHoleCards returns a copy of players with every seat's hole
// cards replaced by HiddenCard except for viewerID's own seat. A
// spectator viewerID ("") sees every seat redacted.
func RedactHoleCards(players []HandStartedPlayer, viewerID string) []HandStartedPlayer {
	out := make([]HandStartedPlayer, len(players))
	for i, p := range players {
		out[i] = p
		if p.PlayerID == viewerID && viewerID != "" {
			continue
		}
		hidden := make([]string, len(p.HoleCards))
		for j := range hidden {
			hidden[j] = HiddenCard
		}
		out[i].HoleCards = hidden
	}
	return out
}
