// Package telegram provides a client for sending notifications via Telegram
// Bot API. It formats trade plans and flip opportunities into human-readable
// messages and handles delivery with retry logic for reliability.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kickwise/kickwise/internal/logger"
	"github.com/kickwise/kickwise/internal/opportunity"
	"github.com/kickwise/kickwise/internal/trader"
)

// Client handles Telegram notifications.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendPlan sends a trade plan notification.
func (c *Client) SendPlan(plan opportunity.Plan) error {
	return c.send(FormatPlan(plan))
}

// SendOpportunities sends a flip opportunity list.
func (c *Client) SendOpportunities(opportunities []trader.Opportunity) error {
	return c.send(FormatOpportunities(opportunities))
}

// send delivers a MarkdownV2 message with linear-backoff retries.
func (c *Client) send(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err != nil {
			lastErr = err
			logger.Warn("telegram send attempt %d failed: %v", i+1, err)
			time.Sleep(time.Duration(i+1) * c.retryDelayBase)
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to send after %d attempts: %w", c.maxRetries, lastErr)
}

// FormatPlan renders a trade plan as a MarkdownV2 message.
func FormatPlan(plan opportunity.Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Trade plan: %s*\n", EscapeMarkdownV2(plan.TargetName))
	fmt.Fprintf(&b, "Cost: %s\n\n", EscapeMarkdownV2(formatEuros(plan.TargetCost)))

	if len(plan.ToSell) == 0 {
		b.WriteString("Sufficient budget, no sales needed\\.\n")
	} else {
		b.WriteString("Must sell:\n")
		for _, s := range plan.ToSell {
			fmt.Fprintf(&b, "• %s \\(%s\\)\n", EscapeMarkdownV2(s.Name), EscapeMarkdownV2(formatEuros(s.Price)))
		}
		fmt.Fprintf(&b, "Proceeds: %s\n", EscapeMarkdownV2(formatEuros(plan.Proceeds)))
	}

	fmt.Fprintf(&b, "\nBudget after trade: %s\n", EscapeMarkdownV2(formatEuros(plan.NetBudget)))
	fmt.Fprintf(&b, "Value change: %s\n", EscapeMarkdownV2(fmt.Sprintf("%+.1f", plan.NetValueChange)))

	verdict := "NO"
	if plan.Worthwhile {
		verdict = "YES"
	}
	fmt.Fprintf(&b, "Worth it? *%s* — %s \\(%.0f%%\\)",
		verdict, EscapeMarkdownV2(plan.Reason), plan.Confidence*100)

	return b.String()
}

// FormatOpportunities renders a flip opportunity list as a MarkdownV2 message.
func FormatOpportunities(opportunities []trader.Opportunity) string {
	if len(opportunities) == 0 {
		return "No flip opportunities found\\."
	}

	var b strings.Builder
	b.WriteString("*Flip opportunities*\n\n")
	for i, o := range opportunities {
		fmt.Fprintf(&b, "%d\\. %s — %s, expect %s\n",
			i+1,
			EscapeMarkdownV2(o.Player.FullName()),
			EscapeMarkdownV2(formatEuros(o.BuyPrice)),
			EscapeMarkdownV2(fmt.Sprintf("%+.1f%%", o.ExpectedAppreciationPct)))
		fmt.Fprintf(&b, "   %s\n", EscapeMarkdownV2(o.Reason))
	}
	return b.String()
}

// EscapeMarkdownV2 escapes the characters Telegram's MarkdownV2 mode reserves.
func EscapeMarkdownV2(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
		"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
		"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func formatEuros(amount int) string {
	// Group thousands for readability: 1234567 -> €1,234,567
	s := strconv.Itoa(amount)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := "€" + strings.Join(parts, ",")
	if negative {
		out = "-" + out
	}
	return out
}
