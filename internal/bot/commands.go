package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/avolkhin/sqlarena/internal/models"
	"github.com/avolkhin/sqlarena/internal/rank"
)

const (
	userHelp = `Доступные команды:
/list - Список соревнований
/status <id> - Статус соревнования
/help - Показать это сообщение`

	adminHelp = `Доступные команды:
/list - Список соревнований
/status <id> - Статус соревнования
/standings <id> - Таблица результатов соревнования
/token <userID> <role> - Выдать API-токен (role: user | organizer)
/help - Показать это сообщение

Примеры:
/standings 3
/token 42 organizer`
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routeUserCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":  b.handleStart,
		"list":   b.handleList,
		"status": b.handleStatus,
		"help":   b.handleHelp,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"standings": b.handleStandings,
		"token":     b.handleToken,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routeUserCommands(cmd); ok {
		if err := handler(msg); err != nil {
			logger.Error.Printf("Command error: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
		}
		return
	}

	if b.admins[msg.From.ID] {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			if err := handler(msg); err != nil {
				logger.Error.Printf("Command error: %v", err)
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
			}
		}
		return
	}

	b.sendHelp(msg.Chat.ID)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	var text string
	if b.admins[msg.From.ID] {
		text = adminHelp
	} else {
		text = userHelp
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "Отправьте /help для списка команд.")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	text := "Привет! Я слежу за SQL-соревнованиями.\n\n"
	if b.admins[msg.From.ID] {
		text += "Ты администратор. Используй /help для списка команд."
	} else {
		text += "Используй /list чтобы посмотреть соревнования."
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleList(msg *tgbotapi.Message) error {
	comps, err := b.store.ListCompetitions()
	if err != nil {
		return fmt.Errorf("ошибка получения списка соревнований: %v", err)
	}

	if len(comps) == 0 {
		return b.sendMessage(msg.Chat.ID, "Соревнования не найдены")
	}

	now := b.clock.NowUnix()
	var sb strings.Builder
	sb.WriteString("Соревнования:\n\n")
	for _, c := range comps {
		sb.WriteString(fmt.Sprintf("🏁 #%d %s [%s]\n📅 %s — %s\n\n",
			c.ID,
			c.Name,
			stateEmoji(c.StateAt(now)),
			time.Unix(c.StartTime, 0).UTC().Format("2006-01-02 15:04"),
			time.Unix(c.EndTime, 0).UTC().Format("2006-01-02 15:04"),
		))
	}

	return b.sendMessage(msg.Chat.ID, sb.String())
}

func (b *Bot) handleStatus(msg *tgbotapi.Message) error {
	id, err := parseCompetitionID(msg.CommandArguments())
	if err != nil {
		return err
	}

	c, err := b.store.GetCompetition(id)
	if err != nil {
		return fmt.Errorf("ошибка получения соревнования: %v", err)
	}
	if c == nil {
		return b.sendMessage(msg.Chat.ID, "Соревнование не найдено")
	}

	state := c.StateAt(b.clock.NowUnix())
	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("#%d %s\nСтатус: %s %s",
		c.ID, c.Name, stateEmoji(state), state))
}

func (b *Bot) handleStandings(msg *tgbotapi.Message) error {
	id, err := parseCompetitionID(msg.CommandArguments())
	if err != nil {
		return err
	}

	standings, err := b.store.FetchStandings(id)
	if err != nil {
		return fmt.Errorf("ошибка получения результатов: %v", err)
	}

	if len(standings) == 0 {
		return b.sendMessage(msg.Chat.ID, "Пока нет ни одного ответа")
	}

	placed := rank.AssignPlaces(standings)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Результаты соревнования #%d:\n\n", id))
	for _, s := range placed {
		sb.WriteString(fmt.Sprintf("%d. user %d — %d балл(ов), последний ответ %s\n",
			s.Place,
			s.UserID,
			s.TotalScore,
			time.Unix(s.LastTime, 0).UTC().Format("15:04:05"),
		))
	}

	return b.sendMessage(msg.Chat.ID, sb.String())
}

func (b *Bot) handleToken(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		return fmt.Errorf("использование: /token <userID> <role>")
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный userID: %v", err)
	}

	role := models.Role(args[1])
	if role != models.RoleUser && role != models.RoleOrganizer {
		return fmt.Errorf("роль должна быть user или organizer")
	}

	token, err := b.tokens.IssueToken(context.Background(), userID, role)
	if err != nil {
		return fmt.Errorf("ошибка выдачи токена: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Токен для user %d (%s):\n%s", userID, role, token))
}

func parseCompetitionID(args string) (int64, error) {
	fields := strings.Fields(args)
	if len(fields) < 1 {
		return 0, fmt.Errorf("укажи id соревнования, например: /status 3")
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректный id: %v", err)
	}
	return id, nil
}

func stateEmoji(state models.CompetitionState) string {
	switch state {
	case models.StatePlanned:
		return "🕓"
	case models.StateCurrent:
		return "🟢"
	default:
		return "🏁"
	}
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
