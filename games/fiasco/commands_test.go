package fiasco

import (
	"reflect"
	"strings"
	"testing"
)

var (
	alice = Caller{ID: "U1", Handle: "alice"}
	bob   = Caller{ID: "U2", Handle: "bob"}

	playerNames = map[string]string{"alice": "Alice", "bob": "Bob"}
)

func totalDice(g *Game) int {
	total := len(g.Dice())
	for _, p := range g.Users() {
		total += len(p.Dice)
	}
	return total
}

func registeredGame(callers ...Caller) *Game {
	g := newTestGame()
	for _, c := range callers {
		Register(g, []string{playerNames[c.Handle]}, c)
	}
	return g
}

func TestResetRequiresConfirm(t *testing.T) {
	g := registeredGame(alice)

	resp := Reset(g, nil, alice)
	if resp.Broadcast || !strings.Contains(resp.Text, "confirm") {
		t.Errorf("Expected private confirm hint, got %+v", resp)
	}
	if g.UserCount() != 1 {
		t.Error("Expected no change without confirm")
	}

	resp = Reset(g, []string{"yes"}, alice)
	if g.UserCount() != 1 || resp.Broadcast {
		t.Errorf("Expected wrong token to be refused, got %+v", resp)
	}
}

func TestResetIdempotent(t *testing.T) {
	g := registeredGame(alice, bob)
	Pool(g, []string{"reset"}, alice)
	Setup(g, []string{"add", "Relationship: old flames"}, alice)

	resp := Reset(g, []string{"confirm"}, alice)
	if !resp.Broadcast {
		t.Errorf("Expected broadcast reset notice, got %+v", resp)
	}
	once := g.Document().Clone()

	Reset(g, []string{"CONFIRM"}, alice)
	if !reflect.DeepEqual(once, g.Document()) {
		t.Errorf("Expected second reset to change nothing, got %v vs %v", once, g.Document())
	}
	if g.UserCount() != 0 || len(g.Dice()) != 0 || len(g.Setup()) != 0 {
		t.Error("Expected empty users, dice and setup")
	}
}

func TestSetupCommands(t *testing.T) {
	g := newTestGame()

	if resp := Setup(g, nil, alice); resp.Text != noSetup {
		t.Errorf("Expected %q, got %q", noSetup, resp.Text)
	}

	Setup(g, []string{"add", "Location:", "the", "docks"}, alice)
	resp := Setup(g, []string{"add", "Object: a cursed ring"}, alice)
	want := "Setup:\n0. Location: the docks\n1. Object: a cursed ring"
	if resp.Text != want || !resp.Broadcast {
		t.Errorf("Expected %q, got %+v", want, resp)
	}

	resp = Setup(g, []string{"remove", "0"}, alice)
	if resp.Text != "Setup:\n0. Object: a cursed ring" {
		t.Errorf("Unexpected setup after remove: %q", resp.Text)
	}

	for _, bad := range []string{"5", "-1", "first"} {
		resp = Setup(g, []string{"remove", bad}, alice)
		if resp.Broadcast || resp.Text != "No setup line "+bad+"." {
			t.Errorf("Expected private error for index %s, got %+v", bad, resp)
		}
	}
	if len(g.Setup()) != 1 {
		t.Errorf("Expected bad removes to change nothing, got %v", g.Setup())
	}

	if resp := Setup(g, []string{"add"}, alice); resp.Broadcast {
		t.Errorf("Expected usage for empty add, got %+v", resp)
	}
	if resp := Setup(g, []string{"frobnicate"}, alice); !strings.HasPrefix(resp.Text, "Usage:") {
		t.Errorf("Expected usage for unknown subcommand, got %q", resp.Text)
	}
}

func TestRegisterThenStatus(t *testing.T) {
	g := newTestGame()

	resp := Register(g, []string{"Alice"}, alice)
	if resp.Text != "alice is now registered as Alice" {
		t.Errorf("Unexpected register reply: %q", resp.Text)
	}

	resp = Status(g, nil, alice)
	if !strings.Contains(resp.Text, "Alice (alice)") {
		t.Errorf("Expected status line for Alice, got %q", resp.Text)
	}
	if resp.Text != "Players:\nAlice (alice)\n\n" {
		t.Errorf("Expected empty pool display, got %q", resp.Text)
	}
}

func TestRegisterRequiresName(t *testing.T) {
	g := newTestGame()
	resp := Register(g, nil, alice)
	if resp.Broadcast || g.UserCount() != 0 {
		t.Errorf("Expected refusal without a name, got %+v", resp)
	}
}

func TestStatusNoUsers(t *testing.T) {
	g := newTestGame()
	resp := Status(g, nil, alice)
	if !strings.Contains(resp.Text, noUsers) {
		t.Errorf("Expected %q, got %q", noUsers, resp.Text)
	}
}

func TestTakeThenStatus(t *testing.T) {
	g := registeredGame(alice)
	g.SetDice([]Die{{White, 3}})

	resp := Take(g, []string{"w", "3"}, alice)
	if !resp.Broadcast || !strings.Contains(resp.Text, ":d6-3:") {
		t.Errorf("Expected broadcast naming the die, got %+v", resp)
	}

	status := Status(g, nil, alice).Text
	if !strings.Contains(status, "Alice (alice) :d6-3:") {
		t.Errorf("Expected die under Alice, got %q", status)
	}
	if len(g.Dice()) != 0 {
		t.Errorf("Expected empty pool, got %v", g.Dice())
	}
}

func TestTakeFailures(t *testing.T) {
	g := registeredGame(alice)
	g.SetDice([]Die{{White, 3}})
	before := g.Document().Clone()

	cases := []struct {
		name   string
		args   []string
		caller Caller
		want   string
	}{
		{"not registered", []string{"w3"}, bob, notRegisteredText("fiasco")},
		{"bad die", []string{"w9"}, alice, dieFormatHelp},
		{"absent die", []string{"black", "3"}, alice, "Could not find a black 3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := Take(g, tc.args, tc.caller)
			if resp.Text != tc.want || resp.Broadcast {
				t.Errorf("Expected private %q, got %+v", tc.want, resp)
			}
		})
	}

	if !reflect.DeepEqual(before, g.Document()) {
		t.Error("Expected failed takes to leave the game unchanged")
	}
}

func TestGiveConservesDice(t *testing.T) {
	g := registeredGame(alice, bob)
	Pool(g, []string{"reset"}, alice)
	total := totalDice(g)

	pool := g.Dice()
	first := pool[0]
	Take(g, []string{first.String()}, alice)
	if totalDice(g) != total {
		t.Errorf("Expected take to conserve dice, %d != %d", totalDice(g), total)
	}

	resp := Give(g, []string{first.String(), "@Bob"}, alice)
	if !resp.Broadcast {
		t.Fatalf("Expected give to succeed, got %+v", resp)
	}
	if totalDice(g) != total {
		t.Errorf("Expected give to conserve dice, %d != %d", totalDice(g), total)
	}
	if len(g.GetUserDice("U1")) != 0 {
		t.Errorf("Expected Alice to hold nothing, got %v", g.GetUserDice("U1"))
	}
	if got := g.GetUserDice("U2"); !reflect.DeepEqual(got, []Die{first}) {
		t.Errorf("Expected Bob to hold %v, got %v", first, got)
	}

	resp = Give(g, []string{first.String(), "pool"}, bob)
	if !strings.Contains(resp.Text, "to the pool") {
		t.Errorf("Expected return to pool, got %q", resp.Text)
	}
	if totalDice(g) != total || len(g.Dice()) != len(pool) {
		t.Errorf("Expected die back in the pool, pool=%v", g.Dice())
	}
}

func TestGiveToNobody(t *testing.T) {
	g := registeredGame(alice)
	g.GiveTo(Die{White, 3}, "U1")
	before := g.Document().Clone()

	resp := Give(g, []string{"w", "3", "nobody"}, alice)
	if resp.Broadcast || !strings.Contains(resp.Text, "nobody") {
		t.Errorf("Expected private denial naming nobody, got %+v", resp)
	}
	if !reflect.DeepEqual(before, g.Document()) {
		t.Error("Expected no state change")
	}
	if got := g.GetUserDice("U1"); !reflect.DeepEqual(got, []Die{{White, 3}}) {
		t.Errorf("Expected Alice to still hold white 3, got %v", got)
	}
}

func TestGiveFailures(t *testing.T) {
	g := registeredGame(alice, bob)

	if resp := Give(g, []string{"w3"}, alice); !strings.HasPrefix(resp.Text, "Usage:") {
		t.Errorf("Expected usage, got %q", resp.Text)
	}
	if resp := Give(g, []string{"w3", "alice"}, Caller{ID: "U9", Handle: "eve"}); resp.Text != notRegisteredText("fiasco") {
		t.Errorf("Expected not registered, got %q", resp.Text)
	}
	if resp := Give(g, []string{"w3", "bob"}, alice); resp.Text != "You don't have a white 3" {
		t.Errorf("Expected missing die, got %q", resp.Text)
	}
	if resp := Give(g, []string{"green", "3", "bob"}, alice); resp.Text != dieFormatHelp {
		t.Errorf("Expected format help, got %q", resp.Text)
	}
}

func TestGiveToSelfFirstMatch(t *testing.T) {
	g := registeredGame(alice)
	g.GiveTo(Die{Black, 2}, "U1")
	g.GiveTo(Die{White, 5}, "U1")
	g.GiveTo(Die{Black, 2}, "U1")

	resp := Give(g, []string{"b2", "alice"}, alice)
	if !resp.Broadcast {
		t.Fatalf("Expected self give to succeed, got %+v", resp)
	}
	want := []Die{{White, 5}, {Black, 2}, {Black, 2}}
	if got := g.GetUserDice("U1"); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected first black 2 moved to the end, got %v", got)
	}
}

func TestRollNoDice(t *testing.T) {
	g := registeredGame(alice)
	before := g.Document().Clone()

	resp := Roll(g, nil, alice)
	if resp.Text != "You have no dice." || resp.Broadcast {
		t.Errorf("Expected private no dice reply, got %+v", resp)
	}
	if !reflect.DeepEqual(before, g.Document()) {
		t.Error("Expected no state change")
	}
}

func TestRollTotals(t *testing.T) {
	g := registeredGame(alice)
	g.GiveTo(Die{White, 1}, "U1")
	g.GiveTo(Die{White, 1}, "U1")
	g.GiveTo(Die{Black, 1}, "U1")

	resp := Roll(g, nil, alice)
	if !resp.Broadcast {
		t.Fatalf("Expected broadcast roll, got %+v", resp)
	}

	total := 0
	for _, d := range g.GetUserDice("U1") {
		if d.Color == White {
			total += d.Number
		} else {
			total -= d.Number
		}
	}
	if want := "Total: " + formatTotal(total); !strings.HasSuffix(resp.Text, want) {
		t.Errorf("Expected reply ending %q, got %q", want, resp.Text)
	}
	whites, blacks := countColors(g.GetUserDice("U1"))
	if whites != 2 || blacks != 1 {
		t.Errorf("Expected colors kept, got %d white %d black", whites, blacks)
	}
}

func TestFormatTotal(t *testing.T) {
	if got := formatTotal(4); got != "white 4" {
		t.Errorf("Expected 'white 4', got %q", got)
	}
	if got := formatTotal(-3); got != "black 3" {
		t.Errorf("Expected 'black 3', got %q", got)
	}
	if got := formatTotal(0); got != "0" {
		t.Errorf("Expected '0', got %q", got)
	}
}

func TestPoolCommands(t *testing.T) {
	g := newTestGame()

	resp := Pool(g, []string{"reset"}, alice)
	if resp.Broadcast || !strings.HasPrefix(resp.Text, "No registered users") {
		t.Errorf("Expected private refusal, got %+v", resp)
	}
	if g.Document().Get("", fieldDice) != nil {
		t.Error("Expected no pool written without players")
	}

	if resp := Pool(g, []string{"reroll"}, alice); resp.Text != emptyPoolNotice {
		t.Errorf("Expected empty pool notice, got %q", resp.Text)
	}

	Register(g, []string{"Alice"}, alice)
	Register(g, []string{"Bob"}, bob)
	Pool(g, []string{"RESET"}, alice)
	whites, blacks := countColors(g.Dice())
	if whites != 4 || blacks != 4 {
		t.Errorf("Expected 4 white and 4 black, got %d and %d", whites, blacks)
	}

	resp = Pool(g, nil, alice)
	if resp.Text != "Pool:\n"+FormatPool(g.Dice()) {
		t.Errorf("Unexpected pool display %q", resp.Text)
	}

	if resp := Pool(g, []string{"reroll"}, alice); !strings.HasPrefix(resp.Text, "Pool rerolled.") {
		t.Errorf("Expected reroll reply, got %q", resp.Text)
	}
	if len(g.Dice()) != 8 {
		t.Errorf("Expected reroll to keep 8 dice, got %d", len(g.Dice()))
	}
}

func TestSpend(t *testing.T) {
	g := registeredGame(alice)
	g.GiveTo(Die{Black, 6}, "U1")

	if resp := Spend(g, []string{"w6"}, alice); resp.Text != "You don't have a white 6" {
		t.Errorf("Expected missing die, got %q", resp.Text)
	}
	resp := Spend(g, []string{"black", "6"}, alice)
	if !resp.Broadcast || !strings.Contains(resp.Text, ":d6-6-black:") {
		t.Errorf("Expected spend broadcast, got %+v", resp)
	}
	if len(g.GetUserDice("U1")) != 0 || len(g.Dice()) != 0 {
		t.Error("Expected spent die to leave the game")
	}
}

func TestUnregisterReturnsDice(t *testing.T) {
	g := registeredGame(alice, bob)
	g.GiveTo(Die{White, 2}, "U2")
	total := totalDice(g)

	resp := Unregister(g, []string{"@BOB"}, alice)
	if !resp.Broadcast {
		t.Errorf("Expected broadcast, got %+v", resp)
	}
	if _, ok := g.GetUser("U2"); ok {
		t.Error("Expected bob to be unregistered")
	}
	if totalDice(g) != total || !reflect.DeepEqual(g.Dice(), []Die{{White, 2}}) {
		t.Errorf("Expected bob's die in the pool, got %v", g.Dice())
	}

	Unregister(g, nil, alice)
	if g.UserCount() != 0 {
		t.Error("Expected caller to unregister")
	}
}

func TestOpaqueUserIDs(t *testing.T) {
	g := newTestGame()
	caller := Caller{ID: "T1/U1", Handle: "alice"}
	g.SetDice([]Die{{White, 1}})

	Register(g, []string{"Alice"}, caller)

	p, ok := g.GetUser("T1/U1")
	if !ok || p.Name != "Alice" {
		t.Fatalf("Expected slash id to be registered, got %+v (%v)", p, ok)
	}
	if _, nested := g.GetUser("T1"); nested {
		t.Error("Expected id to not be split into nested records")
	}

	resp := Take(g, []string{"w1"}, caller)
	if !resp.Broadcast {
		t.Fatalf("Expected take to succeed, got %q", resp.Text)
	}
	if status := Status(g, nil, caller).Text; !strings.Contains(status, "Alice (alice) :d6-1:") {
		t.Errorf("Expected die under Alice, got %q", status)
	}

	Unregister(g, nil, caller)
	if g.UserCount() != 0 || len(g.Dice()) != 1 {
		t.Errorf("Expected player gone and die returned, users=%d pool=%v", g.UserCount(), g.Dice())
	}
}

func TestCommandNameInReplies(t *testing.T) {
	g := newTestGame()
	caller := Caller{ID: "U1", Handle: "alice", Command: "dice"}

	resp := Take(g, []string{"w1"}, caller)
	if !strings.Contains(resp.Text, "/dice register") || strings.Contains(resp.Text, "/fiasco") {
		t.Errorf("Expected reply to name /dice, got %q", resp.Text)
	}

	resp = Pool(g, []string{"reset"}, caller)
	if !strings.Contains(resp.Text, "/dice register") {
		t.Errorf("Expected reply to name /dice, got %q", resp.Text)
	}
}

func TestGiveToMention(t *testing.T) {
	g := registeredGame(alice, bob)
	g.GiveTo(Die{White, 3}, "U1")
	g.GiveTo(Die{Black, 4}, "U1")

	resp := Give(g, []string{"w3", "<@U2>"}, alice)
	if !resp.Broadcast || resp.Text != "alice gave :d6-3: to bob" {
		t.Errorf("Expected give by mention, got %+v", resp)
	}

	resp = Give(g, []string{"b4", "<@!U2>"}, alice)
	if !resp.Broadcast {
		t.Errorf("Expected give by nickname mention, got %+v", resp)
	}
	if got := g.GetUserDice("U2"); len(got) != 2 {
		t.Errorf("Expected bob to hold 2 dice, got %v", got)
	}

	before := g.Document().Clone()
	resp = Give(g, []string{"w3", "<@U9>"}, bob)
	if resp.Broadcast || !strings.Contains(resp.Text, "<@U9>") {
		t.Errorf("Expected private denial naming the mention, got %+v", resp)
	}
	if !reflect.DeepEqual(before, g.Document()) {
		t.Error("Expected no state change")
	}
}

func TestUnregisterByMention(t *testing.T) {
	g := registeredGame(alice, bob)

	resp := Unregister(g, []string{"<@U2>"}, alice)
	if resp.Text != "alice unregistered bob" {
		t.Errorf("Unexpected reply %q", resp.Text)
	}
	if _, ok := g.GetUser("U2"); ok {
		t.Error("Expected bob to be unregistered")
	}
}
