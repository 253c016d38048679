package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

// Bot binds the command suite to a Discord session.
type Bot struct {
	session  *discordgo.Session
	guildID  string
	calendar *CalendarCommand
	remind   *RemindCommand
	runCtx   context.Context
}

func New(token, guildID string, calendar *CalendarCommand, remind *RemindCommand) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	b := &Bot{session: session, guildID: guildID, calendar: calendar, remind: remind}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	session.Identify.Intents = discordgo.IntentsGuilds

	return b, nil
}

// Start opens the gateway connection and registers the slash commands.
// ctx bounds every paging session the bot opens.
func (b *Bot) Start(ctx context.Context) error {
	b.runCtx = ctx
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return err
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// NotifyReminder delivers a fired reminder as a DM.
func (b *Bot) NotifyReminder(userID string, ev schedule.Event) {
	ch, err := b.session.UserChannelCreate(userID)
	if err != nil {
		log.Printf("remind: open dm for user %s: %v", userID, err)
		return
	}

	label := ev.CourseID
	if label == "" {
		label = "your event"
	}
	msg := fmt.Sprintf("Reminder: %s starts at %s", label, ev.Start)
	if ev.Instructor != "" {
		msg = fmt.Sprintf("Reminder: %s with %s starts at %s", label, ev.Instructor, ev.Start)
	}
	if _, err := b.session.ChannelMessageSend(ch.ID, msg); err != nil {
		log.Printf("remind: send dm for user %s: %v", userID, err)
	}
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "calendar",
		Description: "Browse upcoming course events from the shared calendar",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "classname", Description: "Course code, e.g. cisc101"},
			{Type: discordgo.ApplicationCommandOptionString, Name: "locationtype", Description: "IP for in person, V for virtual"},
			{Type: discordgo.ApplicationCommandOptionString, Name: "eventholder", Description: "Instructor name (substring match)"},
			{Type: discordgo.ApplicationCommandOptionString, Name: "eventdate", Description: `A date like "december 25"`},
			{Type: discordgo.ApplicationCommandOptionString, Name: "dayofweek", Description: "A weekday name, e.g. monday"},
		},
	},
	{
		Name:        "remind",
		Description: "Get a DM before an event from your last calendar fetch",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "event", Description: "Event number from your last fetch", Required: true},
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "How many minutes before the event", Required: true},
		},
	},
}

func (b *Bot) registerCommands() error {
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, commands); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	log.Printf("discord: logged in as %s", r.User.Username)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Acknowledge within the interaction deadline, then do the slow work
	// off the gateway goroutine.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Printf("discord: acknowledge %s: %v", i.ApplicationCommandData().Name, err)
		return
	}

	data := i.ApplicationCommandData()
	userID := interactionUserID(i)
	ui := &interactionUI{session: s, interaction: i.Interaction, userID: userID}

	go func() {
		switch data.Name {
		case "calendar":
			b.calendar.Execute(b.runCtx, userID, optionsFrom(data), ui)
		case "remind":
			var eventNum, minutes int64
			for _, opt := range data.Options {
				switch opt.Name {
				case "event":
					eventNum = opt.IntValue()
				case "minutes":
					minutes = opt.IntValue()
				}
			}
			b.remind.Execute(b.runCtx, userID, eventNum, minutes, ui)
		}
	}()
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, sessionID, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	// Acknowledge first so even a stale click never shows as failed.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Printf("discord: acknowledge component: %v", err)
	}

	b.calendar.Dispatch(sessionID, action)
}

func optionsFrom(data discordgo.ApplicationCommandInteractionData) Options {
	var opts Options
	for _, opt := range data.Options {
		switch opt.Name {
		case "classname":
			opts.ClassName = opt.StringValue()
		case "locationtype":
			opts.LocationType = opt.StringValue()
		case "eventholder":
			opts.EventHolder = opt.StringValue()
		case "eventdate":
			opts.EventDate = opt.StringValue()
		case "dayofweek":
			opts.DayOfWeek = opt.StringValue()
		}
	}
	return opts
}

// interactionUserID works for both guild and DM invocations.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func customID(action, sessionID string) string {
	return "cal:" + action + ":" + sessionID
}

func parseCustomID(id string) (NavAction, string, bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != "cal" {
		return 0, "", false
	}
	switch parts[1] {
	case "prev":
		return NavPrev, parts[2], true
	case "next":
		return NavNext, parts[2], true
	case "done":
		return NavDone, parts[2], true
	}
	return 0, "", false
}
