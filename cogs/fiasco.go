package cogs

import (
	"context"
	"strings"

	"fislacko-go/games/fiasco"
	"fislacko-go/utils"

	"github.com/bwmarrin/discordgo"
)

const commandOption = "command"

// FiascoCog serves the fiasco slash command on Discord
type FiascoCog struct {
	dispatcher *fiasco.Dispatcher
	name       string
}

// NewFiascoCog creates the Discord surface for dispatcher
func NewFiascoCog(dispatcher *fiasco.Dispatcher, name string) *FiascoCog {
	if name == "" {
		name = "fiasco"
	}
	return &FiascoCog{dispatcher: dispatcher, name: name}
}

// Command returns the slash command definition
func (c *FiascoCog) Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.name,
		Description: "Fiasco dice pool, players and setup",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        commandOption,
				Description: "e.g. register Alice, status, take w5, give b2 @bob, roll",
				Required:    true,
			},
		},
	}
}

// RequestFromInteraction builds a dispatcher request from a slash command.
// It returns false for interactions that are not this command.
func (c *FiascoCog) RequestFromInteraction(i *discordgo.InteractionCreate) (fiasco.Request, bool) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return fiasco.Request{}, false
	}
	data := i.ApplicationCommandData()
	if data.Name != c.name {
		return fiasco.Request{}, false
	}

	user := interactionUser(i)
	if user == nil {
		return fiasco.Request{}, false
	}

	text := ""
	for _, opt := range data.Options {
		if opt.Name == commandOption {
			text = opt.StringValue()
		}
	}

	return fiasco.Request{
		SessionID: i.ChannelID,
		Text:      strings.TrimSpace(text),
		UserID:    user.ID,
		UserName:  user.Username,
	}, true
}

// HandleInteraction is registered with the Discord session
func (c *FiascoCog) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	req, ok := c.RequestFromInteraction(i)
	if !ok {
		return
	}

	resp := c.dispatcher.Handle(context.Background(), req)
	if err := utils.SendTextResponse(s, i, resp.Text, !resp.Broadcast); err != nil {
		utils.BotLogf("DISCORD_API", "reply to %s in %s failed: %v", req.UserName, req.SessionID, err)
	}
}

// interactionUser works for guild channels (Member) and direct messages (User)
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
