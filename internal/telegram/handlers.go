package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-opportunity-hunter/internal/harvest"
	"go-opportunity-hunter/internal/models"
)

const (
	buttonScrapeNow = "🔄 Scrape Now"
	buttonBrowse    = "🔍 Browse"
	buttonTracked   = "📋 My Tracked"
)

var mainKeyboard = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(buttonBrowse),
		tgbotapi.NewKeyboardButton(buttonTracked),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(buttonScrapeNow),
	),
)

// Run consumes Telegram updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	log.Printf("🤖 Bot started as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}

	msg := update.Message
	if msg.From == nil {
		//channel posts carry no sender to attribute commands to
		return
	}
	switch {
	case msg.IsCommand() && msg.Command() == "start":
		b.handleStart(ctx, msg)
	case msg.IsCommand() && msg.Command() == "scrap":
		b.runManualHarvest(ctx, msg.Chat.ID)
	case msg.Text == buttonScrapeNow:
		b.runManualHarvest(ctx, msg.Chat.ID)
	case msg.Text == buttonBrowse:
		b.handleBrowse(ctx, msg.Chat.ID)
	case msg.Text == buttonTracked:
		b.handleTracked(ctx, msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	_, err := b.store.GetOrCreateUser(ctx,
		strconv.FormatInt(msg.From.ID, 10),
		msg.From.UserName, msg.From.FirstName, msg.From.LastName)
	if err != nil {
		log.Printf("⚠️ Start error: %v", err)
		b.reply(msg.Chat.ID, "Error occurred during startup.")
		return
	}

	welcome := tgbotapi.NewMessage(msg.Chat.ID, "Welcome to OpportunityHunter! 🎯")
	welcome.ReplyMarkup = mainKeyboard
	b.api.Send(welcome)
}

func (b *Bot) runManualHarvest(ctx context.Context, chatID int64) {
	listings, err := b.harvester.Run(ctx, harvest.TriggerManual)
	b.reply(chatID, manualPassReply(listings, err))
	//batched results themselves are delivered by the orchestrator via SendListingBatch
}

// manualPassReply maps the outcome of a manual pass to the user-facing
// reply. A successful pass always answers with a summary, even an empty
// one, so the user knows the trigger ran.
func manualPassReply(listings []models.EnrichedListing, err error) string {
	switch {
	case errors.Is(err, harvest.ErrPassRunning):
		return "⏳ A harvest is already running. Try again in a bit."
	case err != nil:
		return "❌ Error during scraping: " + err.Error()
	default:
		return "ℹ️ " + StatusLine(listings)
	}
}

func (b *Bot) handleBrowse(ctx context.Context, chatID int64) {
	opportunities, err := b.store.LatestOpen(ctx, 5)
	if err != nil {
		log.Printf("⚠️ Browse error: %v", err)
		b.reply(chatID, "Error fetching opportunities.")
		return
	}
	if len(opportunities) == 0 {
		b.reply(chatID, "No opportunities found.")
		return
	}

	for _, o := range opportunities {
		msg := tgbotapi.NewMessage(chatID, buildBrowseMessage(o))
		msg.ParseMode = "Markdown"
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🎯 Track", "track_"+o.ID),
			),
		)
		b.api.Send(msg)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if !strings.HasPrefix(cb.Data, "track_") {
		return
	}

	opportunityID := strings.TrimPrefix(cb.Data, "track_")
	userID := strconv.FormatInt(cb.From.ID, 10)

	answer := "✅ Opportunity tracked!"
	if err := b.store.TrackOpportunity(ctx, userID, opportunityID, models.TrackInterested); err != nil {
		log.Printf("⚠️ Track error: %v", err)
		answer = "❌ Error tracking opportunity"
	}
	b.api.Request(tgbotapi.NewCallback(cb.ID, answer))
}

func (b *Bot) handleTracked(ctx context.Context, msg *tgbotapi.Message) {
	tracked, err := b.store.ListTracked(ctx, strconv.FormatInt(msg.From.ID, 10))
	if err != nil {
		log.Printf("⚠️ View tracked error: %v", err)
		b.reply(msg.Chat.ID, "Error fetching tracked opportunities.")
		return
	}
	if len(tracked) == 0 {
		b.reply(msg.Chat.ID, "No tracked opportunities.")
		return
	}

	for _, t := range tracked {
		out := tgbotapi.NewMessage(msg.Chat.ID, buildTrackedMessage(t))
		out.ParseMode = "Markdown"
		b.api.Send(out)
	}
}

// StatusLine summarizes a finished pass for the status message.
func StatusLine(listings []models.EnrichedListing) string {
	failed := 0
	for _, l := range listings {
		if l.EnrichmentFailed {
			failed++
		}
	}
	if failed == 0 {
		return fmt.Sprintf("Harvested %d opportunities.", len(listings))
	}
	return fmt.Sprintf("Harvested %d opportunities (%d without details).", len(listings), failed)
}
