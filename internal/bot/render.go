package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

const embedColor = 0x5865F2

// interactionUI implements UI over one deferred slash-command interaction.
type interactionUI struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	userID      string
}

func (u *interactionUI) Reject(_ context.Context, msg string) error {
	_, err := u.session.InteractionResponseEdit(u.interaction, &discordgo.WebhookEdit{Content: &msg})
	return err
}

func (u *interactionUI) Notify(_ context.Context, msg string) error {
	_, err := u.session.FollowupMessageCreate(u.interaction, true, &discordgo.WebhookParams{
		Content: msg,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

func (u *interactionUI) OpenSession(_ context.Context, sessionID string, v PageView) (PageRenderer, error) {
	ch, err := u.session.UserChannelCreate(u.userID)
	if err != nil {
		return nil, fmt.Errorf("open dm: %w", err)
	}

	msg, err := u.session.ChannelMessageSendComplex(ch.ID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{pageEmbed(v)},
		Components: navComponents(sessionID, v),
	})
	if err != nil {
		return nil, fmt.Errorf("send paged view: %w", err)
	}

	note := "I've sent you a DM with the upcoming events."
	if _, err := u.session.InteractionResponseEdit(u.interaction, &discordgo.WebhookEdit{Content: &note}); err != nil {
		log.Printf("discord: edit invocation reply: %v", err)
	}

	return &messageRenderer{
		session:   u.session,
		sessionID: sessionID,
		channelID: ch.ID,
		messageID: msg.ID,
	}, nil
}

// messageRenderer edits the session's DM message in place.
type messageRenderer struct {
	session   *discordgo.Session
	sessionID string
	channelID string
	messageID string
}

func (r *messageRenderer) Render(_ context.Context, v PageView) error {
	embeds := []*discordgo.MessageEmbed{pageEmbed(v)}
	components := navComponents(r.sessionID, v)
	_, err := r.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    r.channelID,
		ID:         r.messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

func (r *messageRenderer) Close(_ context.Context, v PageView, acknowledge bool) error {
	embeds := []*discordgo.MessageEmbed{pageEmbed(v)}
	components := []discordgo.MessageComponent{}
	_, err := r.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    r.channelID,
		ID:         r.messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return err
	}

	if acknowledge {
		if _, err := r.session.ChannelMessageSend(r.channelID, "Calendar view closed."); err != nil {
			return err
		}
	}
	return nil
}

func pageEmbed(v PageView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Upcoming course events",
		Color: embedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d of %d", v.PageIndex+1, v.PageCount),
		},
	}

	if len(v.Events) == 0 {
		embed.Description = "Nothing on this page."
		return embed
	}

	for n, ev := range v.Events {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  eventTitle(v.PageIndex*pageSize+n+1, ev),
			Value: eventDetails(ev),
		})
	}
	return embed
}

func eventTitle(number int, ev schedule.Event) string {
	title := ev.CourseID
	if title == "" {
		title = "(untitled)"
	}
	if ev.Instructor != "" {
		title += " with " + ev.Instructor
	}
	return fmt.Sprintf("%d. %s", number, title)
}

func eventDetails(ev schedule.Event) string {
	lines := []string{ev.Date}

	place := "In person"
	if ev.LocationType == schedule.Virtual {
		place = "Virtual"
	}
	if ev.Location != "" {
		place += " (" + ev.Location + ")"
	}
	lines = append(lines, place)

	return strings.Join(lines, "\n")
}

func navComponents(sessionID string, v PageView) []discordgo.MessageComponent {
	if v.Closed {
		return []discordgo.MessageComponent{}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Previous", Style: discordgo.SecondaryButton, CustomID: customID("prev", sessionID), Disabled: v.PrevDisabled},
				discordgo.Button{Label: "Next", Style: discordgo.SecondaryButton, CustomID: customID("next", sessionID), Disabled: v.NextDisabled},
				discordgo.Button{Label: "Done", Style: discordgo.DangerButton, CustomID: customID("done", sessionID)},
			},
		},
	}
}
