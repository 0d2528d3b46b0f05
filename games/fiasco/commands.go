package fiasco

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Response is a reply to one command. Broadcast replies are shown to the whole
// channel; the rest only to the caller.
type Response struct {
	Text      string
	Broadcast bool
}

// Caller identifies who issued a command and through which slash command
type Caller struct {
	ID      string
	Handle  string
	Command string
}

func (c Caller) command() string {
	if c.Command == "" {
		return defaultCommand
	}
	return c.Command
}

// Handler runs one verb against a loaded game
type Handler func(g *Game, args []string, caller Caller) Response

const (
	defaultCommand  = "fiasco"
	dieFormatHelp   = "Format is w5 or white 5 (or b1 or black 1)"
	noSetup         = "Game has no setup."
	noUsers         = "No users registered"
	poolTarget      = "pool"
	confirmToken    = "confirm"
	setupAdd        = "add"
	poolResetArg    = "reset"
	poolRerollArg   = "reroll"
	emptyPoolNotice = "The pool is empty."
)

// Discord renders a picked mention as <@id> or <@!id>
var mentionPattern = regexp.MustCompile(`^<@!?([^<>\s]+)>$`)

func notRegisteredText(command string) string {
	return fmt.Sprintf("You are not registered as a player. Please type /%s register your_game_name", command)
}

func private(format string, args ...interface{}) Response {
	return Response{Text: fmt.Sprintf(format, args...)}
}

func broadcast(format string, args ...interface{}) Response {
	return Response{Text: fmt.Sprintf(format, args...), Broadcast: true}
}

// dieError turns a parse failure into the format help reply
func dieError(err error) Response {
	if errors.Is(err, ErrInvalidDie) {
		return private(dieFormatHelp)
	}
	return private("Could not read that die: %v", err)
}

// Reset clears the game once the caller confirms
func Reset(g *Game, args []string, caller Caller) Response {
	if len(args) == 1 && strings.EqualFold(args[0], confirmToken) {
		g.Clear()
		return broadcast("%s has reset the game.", caller.Handle)
	}
	return private("To reset, pass in confirm as the parameter")
}

// Setup shows or edits the setup notes
func Setup(g *Game, args []string, caller Caller) Response {
	if len(args) == 0 {
		return formatSetup(g.Setup())
	}

	switch strings.ToLower(args[0]) {
	case setupAdd:
		text := strings.TrimSpace(strings.Join(args[1:], " "))
		if text == "" {
			return private("Usage: setup add text")
		}
		lines := append(g.Setup(), text)
		g.SetSetup(lines)
		return formatSetup(lines)
	case "remove", "delete", "del":
		if len(args) != 2 {
			return private("Usage: setup remove n")
		}
		lines := g.Setup()
		index, err := strconv.Atoi(args[1])
		if err != nil || index < 0 || index >= len(lines) {
			return private("No setup line %s.", args[1])
		}
		lines = append(lines[:index], lines[index+1:]...)
		g.SetSetup(lines)
		return formatSetup(lines)
	default:
		return private("Usage: %s", VerbSetup.Usage())
	}
}

func formatSetup(lines []string) Response {
	if len(lines) == 0 {
		return broadcast(noSetup)
	}
	numbered := make([]string, len(lines))
	for i, line := range lines {
		numbered[i] = fmt.Sprintf("%d. %s", i, line)
	}
	return broadcast("Setup:\n%s", strings.Join(numbered, "\n"))
}

// Register records the caller under the name they will go by
func Register(g *Game, args []string, caller Caller) Response {
	if len(args) == 0 {
		return private("Please provide the name you will go by.")
	}
	name := strings.Join(args, " ")
	g.SetUser(caller.ID, caller.Handle, name)
	return broadcast("%s is now registered as %s", caller.Handle, name)
}

// Unregister removes the caller, or the player with the given handle. Their
// dice go back to the pool.
func Unregister(g *Game, args []string, caller Caller) Response {
	if len(args) == 0 {
		g.ReturnDiceToPool(caller.ID)
		g.Unregister(caller.ID)
		return broadcast("%s is no longer registered", caller.Handle)
	}

	userID, label, ok := resolvePlayer(g, strings.Join(args, " "))
	if ok {
		g.ReturnDiceToPool(userID)
		g.Unregister(userID)
	}
	return broadcast("%s unregistered %s", caller.Handle, label)
}

// Status lists every player with their dice, then the pool
func Status(g *Game, args []string, caller Caller) Response {
	players := g.Users()
	lines := make([]string, 0, len(players))
	for _, p := range players {
		lines = append(lines, strings.TrimRight(fmt.Sprintf("%s (%s) %s", p.Name, p.Handle, FormatPool(p.Dice)), " "))
	}

	roster := noUsers
	if len(lines) > 0 {
		roster = strings.Join(lines, "\n")
	}
	return broadcast("Players:\n%s\n\n%s", roster, FormatPool(g.Dice()))
}

// Take moves a die from the pool into the caller's hand
func Take(g *Game, args []string, caller Caller) Response {
	if len(args) < 1 {
		return private("Usage: take color number")
	}
	if _, ok := g.GetUser(caller.ID); !ok {
		return private("%s", notRegisteredText(caller.command()))
	}

	die, err := ParseDie(args)
	if err != nil {
		return dieError(err)
	}

	if !g.TakeFromPool(die) {
		return private("Could not find a %s", die)
	}
	g.GiveTo(die, caller.ID)

	return broadcast("%s took %s\n\n%s", caller.Handle, die.Glyph(), poolText(g))
}

// Give hands one of the caller's dice to another player or back to the pool.
// The last argument names the receiver.
func Give(g *Game, args []string, caller Caller) Response {
	if len(args) < 2 {
		return private("Usage: give color number handle")
	}
	if _, ok := g.GetUser(caller.ID); !ok {
		return private("%s", notRegisteredText(caller.command()))
	}

	toPool := strings.EqualFold(normalizeHandle(args[len(args)-1]), poolTarget)

	var targetID, target string
	if !toPool {
		id, label, ok := resolvePlayer(g, args[len(args)-1])
		if !ok {
			return private("No player found with handle \"%s\"", label)
		}
		targetID, target = id, label
	}

	die, err := ParseDie(args[:len(args)-1])
	if err != nil {
		return dieError(err)
	}

	if !g.TakeFrom(die, caller.ID) {
		return private("You don't have a %s", die)
	}

	if toPool {
		g.AddToPool(die)
		return broadcast("%s returned %s to the pool", caller.Handle, die.Glyph())
	}
	g.GiveTo(die, targetID)
	return broadcast("%s gave %s to %s", caller.Handle, die.Glyph(), target)
}

// Roll rerolls every die the caller holds and reports white minus black
func Roll(g *Game, args []string, caller Caller) Response {
	dice := g.GetUserDice(caller.ID)
	if len(dice) == 0 {
		return private("You have no dice.")
	}

	total := 0
	for i := range dice {
		n := dice[i].Roll(g.rng)
		if dice[i].Color == White {
			total += n
		} else {
			total -= n
		}
	}
	g.SetUserDice(caller.ID, dice)

	return broadcast("%s rolled %s\nTotal: %s", caller.Handle, FormatPool(dice), formatTotal(total))
}

func formatTotal(total int) string {
	switch {
	case total > 0:
		return fmt.Sprintf("%s %d", White, total)
	case total < 0:
		return fmt.Sprintf("%s %d", Black, -total)
	default:
		return "0"
	}
}

// Pool shows, recreates or rerolls the shared pool
func Pool(g *Game, args []string, caller Caller) Response {
	if len(args) == 0 {
		return broadcast("Pool:\n%s", poolText(g))
	}

	switch strings.ToLower(args[0]) {
	case poolResetArg:
		dice, ok := g.RegeneratePool()
		if !ok {
			return private("No registered users so no dice rolled. /%s register Your Name to register yourself.", caller.command())
		}
		return broadcast("Pool recreated.\n\n%s", FormatPool(dice))
	case poolRerollArg:
		dice := g.RerollPool()
		if len(dice) == 0 {
			return private(emptyPoolNotice)
		}
		return broadcast("Pool rerolled.\n\n%s", FormatPool(dice))
	default:
		return private("Usage: %s", VerbPool.Usage())
	}
}

// Spend discards one of the caller's dice
func Spend(g *Game, args []string, caller Caller) Response {
	if len(args) < 1 {
		return private("Usage: spend color number")
	}

	die, err := ParseDie(args)
	if err != nil {
		return dieError(err)
	}

	if !g.TakeFrom(die, caller.ID) {
		return private("You don't have a %s", die)
	}
	return broadcast("%s spent %s", caller.Handle, die.Glyph())
}

func poolText(g *Game) string {
	if pool := FormatPool(g.Dice()); pool != "" {
		return pool
	}
	return emptyPoolNotice
}

// resolvePlayer finds a registered player from a handle, an @handle or a chat
// mention. The label is what replies should call them.
func resolvePlayer(g *Game, token string) (userID, label string, ok bool) {
	token = strings.TrimSpace(token)
	if m := mentionPattern.FindStringSubmatch(token); m != nil {
		p, found := g.GetUser(m[1])
		if !found {
			return "", token, false
		}
		if p.Handle != "" {
			return p.ID, p.Handle, true
		}
		return p.ID, p.Name, true
	}

	handle := normalizeHandle(token)
	userID, ok = g.GetUserIDForHandle(handle)
	return userID, handle, ok
}

// normalizeHandle strips a leading @ mention marker
func normalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
