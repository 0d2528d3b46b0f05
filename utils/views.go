package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// SendTextResponse answers a slash command with plain text. Ephemeral replies
// are only visible to the caller.
func SendTextResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) error {
	return SendTextResponseWithTimeout(s, i, content, ephemeral, DiscordResponseTimeout)
}

// SendTextResponseWithTimeout sends an interaction response with configurable timeout
func SendTextResponseWithTimeout(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool, timeout time.Duration) error {
	response := BuildTextResponse(content, ephemeral)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resultCh := make(chan error, 1)

	go func() {
		err := s.InteractionRespond(i.Interaction, response)
		select {
		case resultCh <- err:
		default:
		}
	}()

	select {
	case err := <-resultCh:
		if err != nil {
			BotLogf("DISCORD_API", "SendTextResponse failed: %v", err)
		}
		return err
	case <-ctx.Done():
		BotLogf("DISCORD_API", "SendTextResponse timed out after %v", timeout)
		return ctx.Err()
	}
}

// BuildTextResponse builds the interaction payload for a text reply
func BuildTextResponse(content string, ephemeral bool) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{
		Content: TruncateContent(content, DiscordMaxContent),
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

// TruncateContent cuts content to at most max runes, marking the cut with an ellipsis
func TruncateContent(content string, max int) string {
	runes := []rune(content)
	if max <= 0 || len(runes) <= max {
		return content
	}
	if max == 1 {
		return "…"
	}
	return strings.TrimRight(string(runes[:max-1]), " ") + "…"
}

// BotLogf provides centralized formatted logging tagged with a component area
func BotLogf(area string, format string, args ...interface{}) {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)
	fmt.Printf("[%s] [%s] %s\n", timestamp, area, message)
}
