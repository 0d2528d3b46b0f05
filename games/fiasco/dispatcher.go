package fiasco

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"fislacko-go/utils"

	"github.com/google/uuid"
)

// Request is one slash command as received from a chat surface
type Request struct {
	SessionID string
	Text      string
	UserID    string
	UserName  string
}

// Dispatcher routes command text to a handler, bracketing each call with a
// load and a save of the session document while holding the session lock.
type Dispatcher struct {
	store      utils.DocumentStore
	locks      *utils.SessionLocks
	command    string
	newRand    func() *rand.Rand
	handlerFor func(Verb) Handler
}

// DispatcherOption customizes a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithRandSource sets how each command obtains its random source
func WithRandSource(newRand func() *rand.Rand) DispatcherOption {
	return func(d *Dispatcher) {
		d.newRand = newRand
	}
}

// WithCommandName sets the slash command name shown in usage text
func WithCommandName(name string) DispatcherOption {
	return func(d *Dispatcher) {
		if name != "" {
			d.command = name
		}
	}
}

// NewDispatcher creates a dispatcher over store. A nil locks gets a private
// lock manager without idle sweeping.
func NewDispatcher(store utils.DocumentStore, locks *utils.SessionLocks, opts ...DispatcherOption) *Dispatcher {
	if locks == nil {
		locks = utils.NewSessionLocks(0, 0)
	}
	d := &Dispatcher{
		store:   store,
		locks:   locks,
		command: defaultCommand,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		handlerFor: HandlerFor,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ResolveCommand splits the verb from its arguments
func ResolveCommand(text string) (Verb, []string) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return VerbUnknown, nil
	}

	// roll_pool predates the pool subcommands
	if strings.EqualFold(tokens[0], "roll_pool") {
		return VerbPool, append([]string{poolResetArg}, tokens[1:]...)
	}
	return ParseVerb(tokens[0]), tokens[1:]
}

// HandlerFor returns the handler that implements verb
func HandlerFor(verb Verb) Handler {
	switch verb {
	case VerbReset:
		return Reset
	case VerbSetup:
		return Setup
	case VerbRegister:
		return Register
	case VerbUnregister:
		return Unregister
	case VerbStatus:
		return Status
	case VerbTake:
		return Take
	case VerbGive:
		return Give
	case VerbRoll:
		return Roll
	case VerbPool:
		return Pool
	case VerbSpend:
		return Spend
	case VerbUnknown:
		return nil
	}
	return nil
}

// Handle runs one command. Storage failures and panics are logged and turned
// into a generic reply; they never escape.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (resp Response) {
	verb, args := ResolveCommand(req.Text)
	handler := d.handlerFor(verb)
	if handler == nil {
		return Response{Text: UsageText(d.command)}
	}

	requestID := uuid.NewString()
	unlock := d.locks.Lock(req.SessionID)
	defer unlock()

	doc, err := d.store.Load(ctx, req.SessionID)
	if err != nil {
		utils.BotLogf("DISPATCH", "[%s] load %s failed: %v", requestID, req.SessionID, err)
		return Response{Text: utils.GenericFailureMessage}
	}

	game := NewGame(doc, d.newRand())

	defer func() {
		if r := recover(); r != nil {
			utils.BotLogf("DISPATCH", "[%s] %s panicked: %v", requestID, verb, r)
			resp = Response{Text: utils.GenericFailureMessage}
		}
		if err := d.store.Save(ctx, req.SessionID, game.Document()); err != nil {
			utils.BotLogf("DISPATCH", "[%s] save %s failed: %v", requestID, req.SessionID, err)
			resp = Response{Text: utils.GenericFailureMessage}
		}
	}()

	utils.BotLogf("DISPATCH", "[%s] %s %s by %s (%s)", requestID, req.SessionID, verb, req.UserName, req.UserID)
	return handler(game, args, Caller{ID: req.UserID, Handle: req.UserName, Command: d.command})
}
