package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-opportunity-hunter/internal/harvest"
	"go-opportunity-hunter/internal/models"
)

// Store is the slice of the repository the bot needs.
type Store interface {
	GetOrCreateUser(ctx context.Context, id, username, firstName, lastName string) (*models.User, error)
	LatestOpen(ctx context.Context, limit int) ([]models.Opportunity, error)
	TrackOpportunity(ctx context.Context, userID, opportunityID string, status models.TrackStatus) error
	ListTracked(ctx context.Context, userID string) ([]models.TrackedOpportunity, error)
}

// Harvester triggers a pass on demand.
type Harvester interface {
	Run(ctx context.Context, trigger harvest.Trigger) ([]models.EnrichedListing, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	chatID    int64
	store     Store
	harvester Harvester
}

func NewBot(token string, chatID int64, store Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
		store:  store,
	}, nil
}

// SetHarvester wires the harvester in after construction; the bot is the
// harvester's notifier, so the two can't be built in one shot.
func (b *Bot) SetHarvester(h Harvester) {
	b.harvester = h
}

// SendListingBatch implements harvest.Notifier. Batches arrive pre-paced by
// the orchestrator.
func (b *Bot) SendListingBatch(start, total int, batch []models.EnrichedListing) error {
	msg := tgbotapi.NewMessage(b.chatID, buildBatchMessage(start, total, batch))
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	b.api.Send(msg)
}

func buildBatchMessage(start, total int, batch []models.EnrichedListing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Opportunities %d-%d of %d:\n\n", start+1, start+len(batch), total)
	for i, l := range batch {
		fmt.Fprintf(&sb, "%d. %s\n", start+i+1, l.Title)
		if l.Reward.Amount != "" {
			fmt.Fprintf(&sb, "💰 %s %s\n", l.Reward.Amount, l.Reward.Token)
		}
		if l.Deadline != "" {
			fmt.Fprintf(&sb, "⏰ %s\n", l.Deadline)
		}
		fmt.Fprintf(&sb, "📝 %s\n", l.Type)
		fmt.Fprintf(&sb, "🔗 %s\n", l.URL)
		if l.EnrichmentFailed {
			sb.WriteString("⚠️ details unavailable\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func buildBrowseMessage(o models.Opportunity) string {
	return fmt.Sprintf(
		"💰 *%s*\n\nReward: %s %s\nPlatform: %s\n\n[View Details](%s)",
		escapeMarkdown(o.Title), o.RewardAmount, o.RewardToken, o.Platform, o.URL,
	)
}

func buildTrackedMessage(t models.TrackedOpportunity) string {
	return fmt.Sprintf(
		"🎯 *%s*\nStatus: %s\n[View Details](%s)",
		escapeMarkdown(t.Title), t.TrackStatus, t.URL,
	)
}

// escapeMarkdown neutralizes the legacy-Markdown control characters that
// show up in listing titles
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "`", "\\`",
	)
	return replacer.Replace(text)
}
