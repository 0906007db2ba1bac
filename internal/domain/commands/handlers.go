package commands

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"voicelock-go/internal/domain/eventbus"
	"voicelock-go/internal/domain/speech"
)

// alarmTimePattern accepts "15:30", "15.30" and "15 30".
var alarmTimePattern = regexp.MustCompile(`(\d{1,2})[:. ](\d{2})`)

func (d *Dispatcher) handleDate(ctx context.Context) {
	today := d.now().Format("2 January 2006, Monday")
	d.speaker.Say(ctx, fmt.Sprintf(d.profile.Prompt("date_reply"), today))
}

func (d *Dispatcher) handleAlarm(ctx context.Context, user, when string) {
	if when == "" {
		d.speaker.Say(ctx, d.profile.Prompt("alarm_need_time"))
		return
	}

	match := alarmTimePattern.FindStringSubmatch(when)
	if match == nil {
		d.speaker.Say(ctx, d.profile.Prompt("alarm_invalid"))
		return
	}
	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	if hour > 23 || minute > 59 {
		d.speaker.Say(ctx, d.profile.Prompt("alarm_invalid"))
		return
	}

	now := d.now()
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	// A time already past today means tomorrow.
	if !at.After(now) {
		at = at.Add(24 * time.Hour)
	}

	d.alarms.Schedule(user, at, d.profile.Prompt("alarm_ring"))
	d.speaker.Say(ctx, fmt.Sprintf(d.profile.Prompt("alarm_set"), hour, minute))
}

// handleNotes runs the multi-turn note session: every utterance becomes one
// stored note until a stop word ends it.
func (d *Dispatcher) handleNotes(ctx context.Context, user string) {
	d.speaker.Say(ctx, d.profile.Prompt("note_start"))

	for {
		if ctx.Err() != nil {
			return
		}
		result := d.listener.Listen(ctx, d.profile.STTLanguage)
		switch result.Outcome {
		case speech.OutcomeTimeout:
			d.speaker.Say(ctx, d.profile.Prompt("note_retry"))
			continue
		case speech.OutcomeFailed:
			d.speaker.Say(ctx, d.profile.Prompt("note_not_understood"))
			continue
		}

		text := strings.ToLower(strings.TrimSpace(result.Text))
		if d.isStopWord(text) {
			d.speaker.Say(ctx, d.profile.Prompt("note_done"))
			return
		}

		if err := d.notes.Append(ctx, user, result.Text); err != nil {
			d.logger.ErrorTag("CMD", "saving note: %v", err)
			d.speaker.Say(ctx, d.profile.Prompt("note_error"))
			continue
		}
		d.bus.Publish(eventbus.TopicNoteSaved, eventbus.AuthEventData{Username: user})
		d.speaker.Say(ctx, fmt.Sprintf(d.profile.Prompt("note_saved"), result.Text))
	}
}

func (d *Dispatcher) isStopWord(text string) bool {
	for _, stop := range d.profile.Commands.StopWords {
		if text == stop {
			return true
		}
	}
	return false
}

func (d *Dispatcher) handleSearch(ctx context.Context, query string) {
	if query == "" {
		d.speaker.Say(ctx, d.profile.Prompt("search_empty"))
		return
	}

	target := "https://www.google.com/search?q=" + url.QueryEscape(query)
	if err := d.opener.Open(target); err != nil {
		d.logger.WarnTag("CMD", "opening search url: %v", err)
	}
	d.speaker.Say(ctx, fmt.Sprintf(d.profile.Prompt("search_doing"), query))
}
