package fiasco

import "strings"

// DicePerColorPerPlayer is how many white and how many black dice each
// registered player adds to a fresh pool.
const DicePerColorPerPlayer = 2

// Verb is a chat command understood by the dispatcher
type Verb int

const (
	VerbUnknown Verb = iota
	VerbReset
	VerbSetup
	VerbRegister
	VerbUnregister
	VerbStatus
	VerbTake
	VerbGive
	VerbRoll
	VerbPool
	VerbSpend
)

// Verbs lists every dispatchable verb in help order
var Verbs = []Verb{
	VerbReset,
	VerbSetup,
	VerbRegister,
	VerbUnregister,
	VerbStatus,
	VerbTake,
	VerbGive,
	VerbRoll,
	VerbPool,
	VerbSpend,
}

var verbNames = map[Verb]string{
	VerbReset:      "reset",
	VerbSetup:      "setup",
	VerbRegister:   "register",
	VerbUnregister: "unregister",
	VerbStatus:     "status",
	VerbTake:       "take",
	VerbGive:       "give",
	VerbRoll:       "roll",
	VerbPool:       "pool",
	VerbSpend:      "spend",
}

var verbUsage = map[Verb]string{
	VerbReset:      "reset confirm: clear players, pool and setup",
	VerbSetup:      "setup [add text | remove n]: show or edit the setup",
	VerbRegister:   "register name: register your player name with the game",
	VerbUnregister: "unregister [handle]: leave the game, or remove another player",
	VerbStatus:     "status: show players, their dice and the pool",
	VerbTake:       "take color number: take a die from the pool",
	VerbGive:       "give color number handle|pool: give one of your dice away",
	VerbRoll:       "roll: roll all your dice and show the total",
	VerbPool:       "pool [reset | reroll]: show, recreate or reroll the pool",
	VerbSpend:      "spend color number: spend one of your dice",
}

// Names kept from earlier versions of the bot
var verbAliases = map[string]Verb{
	"claim":      VerbTake,
	"reset_game": VerbReset,
}

// ParseVerb resolves a command word, ignoring case
func ParseVerb(word string) Verb {
	word = strings.ToLower(strings.TrimSpace(word))
	for verb, name := range verbNames {
		if name == word {
			return verb
		}
	}
	if verb, ok := verbAliases[word]; ok {
		return verb
	}
	return VerbUnknown
}

func (v Verb) String() string {
	if name, ok := verbNames[v]; ok {
		return name
	}
	return "unknown"
}

// Usage describes the verb's arguments
func (v Verb) Usage() string {
	return verbUsage[v]
}

// UsageText lists every verb for the given slash command name
func UsageText(command string) string {
	var b strings.Builder
	b.WriteString("Usage: /" + command + " command, where commands are:")
	for _, v := range Verbs {
		b.WriteString("\n" + v.Usage())
	}
	return b.String()
}
