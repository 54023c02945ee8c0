package domain

// VotingState exists exactly while the game is in DAY_VOTING: two nominees
// and the votes accumulated so far.
type VotingState struct {
	Nominee1 string            `json:"nominee1Id"`
	Nominee2 string            `json:"nominee2Id"`
	Votes    map[string]string `json:"votes"` // voter id -> chosen nominee id
}

func newVotingState(nominee1, nominee2 string) *VotingState {
	return &VotingState{
		Nominee1: nominee1,
		Nominee2: nominee2,
		Votes:    make(map[string]string),
	}
}

// IsNominee reports whether id is one of the two nominees on the ballot.
func (v *VotingState) IsNominee(id string) bool {
	return id == v.Nominee1 || id == v.Nominee2
}

// HasVoted reports whether the player has already cast a vote.
func (v *VotingState) HasVoted(playerID string) bool {
	_, ok := v.Votes[playerID]
	return ok
}

// Complete reports whether every eligible voter has voted.
func (v *VotingState) Complete(aliveCount int) bool {
	return len(v.Votes) >= aliveCount
}

// Result tallies the ballot and returns the strict-majority nominee.
// An exact tie (including an empty ballot) returns "": no elimination
// that day. Tie policy is no-elimination rather than re-vote.
func (v *VotingState) Result() string {
	votes1, votes2 := 0, 0
	for _, nominee := range v.Votes {
		switch nominee {
		case v.Nominee1:
			votes1++
		case v.Nominee2:
			votes2++
		}
	}
	switch {
	case votes1 > votes2:
		return v.Nominee1
	case votes2 > votes1:
		return v.Nominee2
	}
	return ""
}

// nominationThreshold is the support a nomination target needs before it
// qualifies for the ballot. A single speaking round caps total nominations
// at the alive count, so the threshold is half the alive players rounded
// up; requiring more would make a two-nominee ballot unreachable.
func nominationThreshold(aliveCount int) int {
	return (aliveCount + 1) / 2
}
