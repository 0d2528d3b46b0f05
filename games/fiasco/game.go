package fiasco

import (
	"math/rand"
	"sort"
	"time"

	"fislacko-go/utils"

	"golang.org/x/text/cases"
)

// Document fields
const (
	fieldDice   = "dice"
	fieldUsers  = "users"
	fieldSetup  = "setup"
	fieldName   = "name"
	fieldHandle = "slack_name"
)

// Player is one registered participant of a game
type Player struct {
	ID     string
	Name   string
	Handle string
	Dice   []Die
}

// Game is the domain view over one session's document. It owns the pool,
// the roster, each player's dice and the setup notes.
type Game struct {
	doc  utils.Document
	path string
	rng  *rand.Rand
}

// NewGame wraps a loaded session document
func NewGame(doc utils.Document, rng *rand.Rand) *Game {
	if doc == nil {
		doc = make(utils.Document)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{doc: doc, rng: rng}
}

// Document returns the underlying document for persistence
func (g *Game) Document() utils.Document {
	return g.doc
}

// users returns the live roster map. Ids are opaque and only ever used as
// keys of this map, never as path segments.
func (g *Game) users() map[string]interface{} {
	users, _ := g.doc.Get(g.path, fieldUsers).(map[string]interface{})
	return users
}

func (g *Game) userRecord(userID string) (map[string]interface{}, bool) {
	record, ok := g.users()[userID].(map[string]interface{})
	return record, ok
}

// putUserField writes one field of userID's record, creating the record and
// the roster as needed.
func (g *Game) putUserField(userID, field string, value interface{}) {
	users := g.users()
	if users == nil {
		users = make(map[string]interface{})
	}
	record, ok := users[userID].(map[string]interface{})
	if !ok {
		record = make(map[string]interface{})
		users[userID] = record
	}
	record[field] = value
	g.doc.Put(g.path, fieldUsers, users)
}

// Dice returns the shared pool
func (g *Game) Dice() []Die {
	return decodeDice(g.doc.Get(g.path, fieldDice))
}

// SetDice replaces the shared pool in one write
func (g *Game) SetDice(dice []Die) {
	g.doc.Put(g.path, fieldDice, encodeDice(dice))
}

// Setup returns the setup notes in order
func (g *Game) Setup() []string {
	raw, _ := g.doc.Get(g.path, fieldSetup).([]interface{})
	lines := make([]string, 0, len(raw))
	for _, item := range raw {
		if line, ok := item.(string); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// SetSetup replaces the setup notes
func (g *Game) SetSetup(lines []string) {
	stored := make([]interface{}, len(lines))
	for i, line := range lines {
		stored[i] = line
	}
	g.doc.Put(g.path, fieldSetup, stored)
}

// Users returns every registered player ordered by id
func (g *Game) Users() []Player {
	raw := g.users()
	ids := sortedIDs(raw)

	players := make([]Player, 0, len(ids))
	for _, id := range ids {
		record, _ := raw[id].(map[string]interface{})
		players = append(players, playerFromRecord(id, record))
	}
	return players
}

// UserCount returns the number of registered players
func (g *Game) UserCount() int {
	return len(g.users())
}

// GetUser returns the player with userID, or false if none is registered
func (g *Game) GetUser(userID string) (Player, bool) {
	record, ok := g.userRecord(userID)
	if !ok {
		return Player{}, false
	}
	return playerFromRecord(userID, record), true
}

// SetUser registers or renames a player. Held dice are left alone.
func (g *Game) SetUser(userID, handle, name string) {
	g.putUserField(userID, fieldName, name)
	g.putUserField(userID, fieldHandle, handle)
}

// Unregister removes the player together with any dice they held
func (g *Game) Unregister(userID string) {
	users := g.users()
	if _, ok := users[userID]; !ok {
		return
	}
	delete(users, userID)
	g.doc.Put(g.path, fieldUsers, users)
}

// GetUserIDForHandle finds the player whose chat handle matches, ignoring case.
// Ties go to the lowest id.
func (g *Game) GetUserIDForHandle(handle string) (string, bool) {
	folder := cases.Fold()
	want := folder.String(handle)
	raw := g.users()
	for _, id := range sortedIDs(raw) {
		record, _ := raw[id].(map[string]interface{})
		stored, _ := record[fieldHandle].(string)
		if stored != "" && folder.String(stored) == want {
			return id, true
		}
	}
	return "", false
}

// GetUserDice returns the dice held by userID
func (g *Game) GetUserDice(userID string) []Die {
	record, _ := g.userRecord(userID)
	return decodeDice(record[fieldDice])
}

// SetUserDice replaces the dice held by userID
func (g *Game) SetUserDice(userID string, dice []Die) {
	g.putUserField(userID, fieldDice, encodeDice(dice))
}

// Clear resets the game to no players, no pool and no setup
func (g *Game) Clear() {
	g.doc.Delete(g.path, fieldUsers)
	g.doc.Delete(g.path, fieldDice)
	g.doc.Delete(g.path, fieldSetup)
}

// TakeFromPool removes the first pool die equal to die
func (g *Game) TakeFromPool(die Die) bool {
	dice, ok := removeFirst(g.Dice(), die)
	if !ok {
		return false
	}
	g.SetDice(dice)
	return true
}

// AddToPool puts die back into the shared pool
func (g *Game) AddToPool(die Die) {
	g.SetDice(append(g.Dice(), die))
}

// TakeFrom removes the first die equal to die from userID's hand
func (g *Game) TakeFrom(die Die, userID string) bool {
	if _, ok := g.GetUser(userID); !ok {
		return false
	}
	dice, ok := removeFirst(g.GetUserDice(userID), die)
	if !ok {
		return false
	}
	g.SetUserDice(userID, dice)
	return true
}

// GiveTo appends die to userID's hand. It fails only when userID is not registered.
func (g *Game) GiveTo(die Die, userID string) bool {
	if _, ok := g.GetUser(userID); !ok {
		return false
	}
	g.SetUserDice(userID, append(g.GetUserDice(userID), die))
	return true
}

// ReturnDiceToPool moves every die userID holds back into the pool
func (g *Game) ReturnDiceToPool(userID string) int {
	held := g.GetUserDice(userID)
	if len(held) == 0 {
		return 0
	}
	g.SetDice(append(g.Dice(), held...))
	g.SetUserDice(userID, nil)
	return len(held)
}

// RegeneratePool replaces the pool with two white and two black dice per
// registered player. It returns false without touching the pool when nobody
// is registered.
func (g *Game) RegeneratePool() ([]Die, bool) {
	count := g.UserCount()
	if count == 0 {
		return nil, false
	}

	dice := make([]Die, 0, count*DicePerColorPerPlayer*2)
	for _, color := range []string{White, Black} {
		for i := 0; i < count*DicePerColorPerPlayer; i++ {
			dice = append(dice, RandomDie(color, g.rng))
		}
	}
	g.SetDice(dice)
	return dice, true
}

// RerollPool redraws the number of every die already in the pool
func (g *Game) RerollPool() []Die {
	dice := g.Dice()
	if len(dice) == 0 {
		return dice
	}
	for i := range dice {
		dice[i].Roll(g.rng)
	}
	g.SetDice(dice)
	return dice
}

func sortedIDs(users map[string]interface{}) []string {
	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func removeFirst(dice []Die, die Die) ([]Die, bool) {
	for i, d := range dice {
		if d == die {
			return append(dice[:i:i], dice[i+1:]...), true
		}
	}
	return dice, false
}

func playerFromRecord(id string, record map[string]interface{}) Player {
	name, _ := record[fieldName].(string)
	handle, _ := record[fieldHandle].(string)
	return Player{
		ID:     id,
		Name:   name,
		Handle: handle,
		Dice:   decodeDice(record[fieldDice]),
	}
}

func encodeDice(dice []Die) []interface{} {
	records := make([]interface{}, len(dice))
	for i, d := range dice {
		records[i] = d.Record()
	}
	return records
}

// decodeDice skips records that no longer describe a valid die
func decodeDice(raw interface{}) []Die {
	records, _ := raw.([]interface{})
	dice := make([]Die, 0, len(records))
	for _, record := range records {
		d, err := DieFromRecord(record)
		if err != nil {
			utils.BotLogf("STORE", "Skipping stored die: %v", err)
			continue
		}
		dice = append(dice, d)
	}
	return dice
}
