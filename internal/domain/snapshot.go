package domain

// PlayerView is the redacted roster entry pushed to viewers. Role and
// team are filled only on the viewer's own entry, or once the player is
// dead and death has revealed them.
type PlayerView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Seat    int    `json:"seat"`
	IsAlive bool   `json:"isAlive"`
	IsHuman bool   `json:"isHuman"`
	ModelID string `json:"modelId,omitempty"`
	Role    string `json:"role,omitempty"`
	Team    string `json:"team,omitempty"`
}

// VotingView mirrors the ballot. Votes are attributed (voter id to
// nominee id) for every viewer.
type VotingView struct {
	Nominee1 string            `json:"nominee1Id"`
	Nominee2 string            `json:"nominee2Id"`
	Votes    map[string]string `json:"votes"`
}

// InvestigationView is a detective's private result for one night.
type InvestigationView struct {
	Night    int    `json:"night"`
	TargetID string `json:"targetId"`
	Result   string `json:"result"`
}

// Snapshot is one viewer's picture of the game at a point in time. The
// session worker emits snapshots in mutation order, so a subscriber
// always observes a monotonically advancing sequence.
type Snapshot struct {
	GameID           string              `json:"gameId"`
	Phase            Phase               `json:"phase"`
	Day              int                 `json:"day"`
	Players          []PlayerView        `json:"players"`
	CurrentSpeakerID string              `json:"currentSpeakerId,omitempty"`
	Nominations      map[string][]string `json:"nominations"`
	Nominees         []string            `json:"nominees,omitempty"`
	Voting           *VotingView         `json:"votingState,omitempty"`
	Winner           string              `json:"winner,omitempty"`
	Complete         bool                `json:"isComplete"`
	DaySummary       string              `json:"daySummary,omitempty"`

	// Investigations holds the viewer's own detective results. Empty for
	// everyone but the investigating detective; never broadcast.
	Investigations []InvestigationView `json:"investigations,omitempty"`
}

// SnapshotFor builds the redacted state view for one viewer. An empty
// viewerID yields the fully redacted spectator view.
func (g *Game) SnapshotFor(viewerID string) Snapshot {
	snap := Snapshot{
		GameID:      g.ID,
		Phase:       g.Phase,
		Day:         g.Day,
		Players:     make([]PlayerView, 0, len(g.Players)),
		Nominations: make(map[string][]string, len(g.Nominations)),
		Winner:      string(g.Winner),
		Complete:    g.Complete(),
		DaySummary:  g.DaySummary,
	}

	for _, p := range g.Players {
		view := PlayerView{
			ID:      p.ID,
			Name:    p.Name,
			Seat:    p.Seat,
			IsAlive: p.IsAlive,
			IsHuman: p.IsHuman,
			ModelID: p.ModelID,
		}
		if p.ID == viewerID || !p.IsAlive {
			view.Role = string(p.Role)
			view.Team = string(p.Team)
		}
		snap.Players = append(snap.Players, view)
	}

	if speaker := g.CurrentSpeaker(); speaker != nil {
		snap.CurrentSpeakerID = speaker.ID
	}

	for target, nominators := range g.Nominations {
		snap.Nominations[target] = append([]string(nil), nominators...)
	}
	snap.Nominees = append([]string(nil), g.Nominees...)

	if g.Voting != nil {
		votes := make(map[string]string, len(g.Voting.Votes))
		for voter, nominee := range g.Voting.Votes {
			votes[voter] = nominee
		}
		snap.Voting = &VotingView{
			Nominee1: g.Voting.Nominee1,
			Nominee2: g.Voting.Nominee2,
			Votes:    votes,
		}
	}

	if viewer, ok := g.player(viewerID); ok && viewer.Role == RoleDetective {
		snap.Investigations = g.investigationsFor(viewerID)
	}

	return snap
}

// investigationsFor collects a detective's resolved results from the
// event log.
func (g *Game) investigationsFor(detectiveID string) []InvestigationView {
	var out []InvestigationView
	for _, e := range g.Events.ByType(EventNightAction) {
		if e.PlayerID != detectiveID || e.Data["actionType"] != string(NightInvestigate) {
			continue
		}
		out = append(out, InvestigationView{
			Night:    e.Day + 1,
			TargetID: e.TargetID,
			Result:   e.Data["result"],
		})
	}
	return out
}

// VisibleEvents filters the event log for a viewer: night actions are
// private to their actor, everything else is public.
func (g *Game) VisibleEvents(viewerID string) []Event {
	var out []Event
	for _, e := range g.Events.All() {
		if e.Type == EventNightAction && e.PlayerID != viewerID {
			continue
		}
		out = append(out, e)
	}
	return out
}
