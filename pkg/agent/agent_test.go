package agent

import (
	"strings"
	"testing"

	"housesim/pkg/market"
	"housesim/pkg/policy"
)

// recordingPolicy captures what the agent shows it.
type recordingPolicy struct {
	accept    bool
	seenSizes []int
	lastSeen  []market.House
	resets    int
}

func (p *recordingPolicy) ShouldAccept(_ market.House, seen []market.House, _ policy.Context) bool {
	p.seenSizes = append(p.seenSizes, len(seen))
	p.lastSeen = seen
	return p.accept
}

func (p *recordingPolicy) Reset() {
	p.resets++
}

func TestAgentDefaultID(t *testing.T) {
	a := New(policy.NewGreedy())
	if !strings.HasPrefix(a.ID(), "agent-") {
		t.Fatalf("unexpected default id %q", a.ID())
	}
}

func TestEvaluateAppendsHistoryEitherWay(t *testing.T) {
	a := New(&recordingPolicy{accept: false}, WithID("a1"))

	a.Evaluate(market.House{ID: "h1", Quality: 4}, 1, 10, 1, 5, 1, 5)
	a.Evaluate(market.House{ID: "h2", Quality: 5}, 2, 10, 1, 5, 1, 4)

	seen := a.SeenHouses()
	if len(seen) != 2 || seen[0].ID != "h1" || seen[1].ID != "h2" {
		t.Fatalf("history should record every exposure in order, got %+v", seen)
	}
}

func TestEvaluateSnapshotExcludesCurrentOffer(t *testing.T) {
	p := &recordingPolicy{accept: false}
	a := New(p, WithID("a1"))

	a.Evaluate(market.House{ID: "h1", Quality: 4}, 1, 10, 1, 5, 1, 5)
	a.Evaluate(market.House{ID: "h2", Quality: 5}, 2, 10, 1, 5, 1, 4)

	// The policy decides about the current offer against prior
	// history, so the offer itself must not appear as already seen.
	if p.seenSizes[0] != 0 || p.seenSizes[1] != 1 {
		t.Fatalf("policy saw history sizes %v, want [0 1]", p.seenSizes)
	}
}

func TestEvaluateSnapshotIsACopy(t *testing.T) {
	p := &recordingPolicy{accept: false}
	a := New(p, WithID("a1"))

	a.Evaluate(market.House{ID: "h1", Quality: 4}, 1, 10, 1, 5, 1, 5)
	a.Evaluate(market.House{ID: "h2", Quality: 5}, 2, 10, 1, 5, 1, 4)

	p.lastSeen[0].Quality = 99

	if a.SeenHouses()[0].Quality == 99 {
		t.Fatal("policy snapshot aliases the agent's history")
	}
}

func TestAcceptDeactivatesAndMatches(t *testing.T) {
	a := New(&recordingPolicy{accept: true}, WithID("a1"))

	if !a.Evaluate(market.House{ID: "h1", Quality: 7}, 1, 10, 1, 5, 1, 5) {
		t.Fatal("expected acceptance")
	}
	if a.Active() {
		t.Fatal("agent stayed active after matching")
	}
	matched, ok := a.MatchedHouse()
	if !ok || matched.ID != "h1" {
		t.Fatalf("matched house = %+v, ok = %v", matched, ok)
	}
}

func TestInactiveAgentIsInert(t *testing.T) {
	p := &recordingPolicy{accept: true}
	a := New(p, WithID("a1"))
	a.Evaluate(market.House{ID: "h1", Quality: 7}, 1, 10, 1, 5, 1, 5)

	if a.Evaluate(market.House{ID: "h2", Quality: 9}, 2, 10, 1, 5, 1, 4) {
		t.Fatal("inactive agent accepted an offer")
	}
	if len(a.SeenHouses()) != 1 {
		t.Fatal("inactive agent recorded an exposure")
	}
	if len(p.seenSizes) != 1 {
		t.Fatal("inactive agent consulted its policy")
	}
}

func TestResetClearsEverything(t *testing.T) {
	p := &recordingPolicy{accept: true}
	a := New(p, WithID("a1"))
	a.Evaluate(market.House{ID: "h1", Quality: 7}, 1, 10, 1, 5, 1, 5)

	a.Reset()

	if !a.Active() {
		t.Fatal("reset did not reactivate the agent")
	}
	if _, ok := a.MatchedHouse(); ok {
		t.Fatal("reset did not clear the match")
	}
	if len(a.SeenHouses()) != 0 {
		t.Fatal("reset did not clear history")
	}
	if p.resets != 1 {
		t.Fatalf("policy resets = %d, want 1", p.resets)
	}
}
