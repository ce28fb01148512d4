package mapper

import (
	"time"

	"wedsync-api/modules/calendar/dto"
	"wedsync-api/modules/calendar/entity"

	"github.com/google/uuid"
)

const allDayLayout = "2006-01-02"

// ToGooglePayload renders an internal event as a Google Calendar event
// body. All-day events use date-only start/end with an exclusive end date,
// per the provider's convention.
func ToGooglePayload(ev *entity.CalendarEvent) dto.GoogleEvent {
	payload := dto.GoogleEvent{
		Summary: ev.Title,
	}
	if ev.Description != nil {
		payload.Description = *ev.Description
	}
	if ev.Location != nil {
		payload.Location = *ev.Location
	}
	if ev.Color != nil {
		payload.ColorID = *ev.Color
	}

	if ev.AllDay {
		day := ev.StartTime.UTC().Truncate(24 * time.Hour)
		end := day.AddDate(0, 0, 1)
		if ev.EndTime != nil && ev.EndTime.After(day) {
			end = ev.EndTime.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
		}
		payload.Start = &dto.GoogleEventTime{Date: day.Format(allDayLayout)}
		payload.End = &dto.GoogleEventTime{Date: end.Format(allDayLayout)}
		return payload
	}

	end := ev.StartTime.Add(time.Hour)
	if ev.EndTime != nil {
		end = *ev.EndTime
	}
	payload.Start = &dto.GoogleEventTime{DateTime: ev.StartTime.Format(time.RFC3339)}
	payload.End = &dto.GoogleEventTime{DateTime: end.Format(time.RFC3339)}
	return payload
}

// FromGoogleEvent materializes an internal event from a remote-only
// listing entry. The caller assigns sync status and persists.
func FromGoogleEvent(tenantID uuid.UUID, g dto.GoogleEvent) *entity.CalendarEvent {
	ev := &entity.CalendarEvent{
		TenantID:   tenantID,
		Category:   entity.CategoryOther,
		SyncStatus: entity.SyncStatusSynced,
	}
	id := g.ID
	ev.GoogleEventID = &id
	ApplyGoogleEvent(ev, g)
	return ev
}

// ApplyGoogleEvent overwrites the local content fields from the remote
// copy. Sync bookkeeping (status, ids, linkage) is left untouched.
func ApplyGoogleEvent(ev *entity.CalendarEvent, g dto.GoogleEvent) {
	ev.Title = g.Summary
	ev.Description = optional(g.Description)
	ev.Location = optional(g.Location)
	ev.Color = optional(g.ColorID)

	start, allDay, ok := ParseEventTime(g.Start)
	if ok {
		ev.StartTime = start
		ev.AllDay = allDay
	}
	if end, _, ok := ParseEventTime(g.End); ok {
		if allDay {
			// Google's all-day end date is exclusive.
			end = end.AddDate(0, 0, -1)
		}
		ev.EndTime = &end
	} else {
		ev.EndTime = nil
	}
}

// Differs reports whether the remote content no longer matches the local
// event. Times are compared at day granularity for all-day events and at
// second granularity otherwise.
func Differs(ev *entity.CalendarEvent, g dto.GoogleEvent) bool {
	if ev.Title != g.Summary {
		return true
	}
	if deref(ev.Description) != g.Description {
		return true
	}
	if deref(ev.Location) != g.Location {
		return true
	}
	if deref(ev.Color) != g.ColorID {
		return true
	}

	start, allDay, ok := ParseEventTime(g.Start)
	if !ok {
		return false
	}
	if allDay != ev.AllDay {
		return true
	}
	if allDay {
		if !sameDay(ev.StartTime, start) {
			return true
		}
	} else if !ev.StartTime.Truncate(time.Second).Equal(start.Truncate(time.Second)) {
		return true
	}

	end, _, ok := ParseEventTime(g.End)
	if !ok {
		return ev.EndTime != nil
	}
	if allDay {
		// Google's all-day end date is exclusive.
		end = end.AddDate(0, 0, -1)
	}
	if ev.EndTime == nil {
		return true
	}
	if allDay {
		return !sameDay(*ev.EndTime, end)
	}
	return !ev.EndTime.Truncate(time.Second).Equal(end.Truncate(time.Second))
}

// ParseEventTime decodes a Google event time. The second return value
// reports whether the value was date-only (all-day).
func ParseEventTime(t *dto.GoogleEventTime) (time.Time, bool, bool) {
	if t == nil {
		return time.Time{}, false, false
	}
	if t.Date != "" {
		parsed, err := time.Parse(allDayLayout, t.Date)
		if err != nil {
			return time.Time{}, false, false
		}
		return parsed, true, true
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, false, false
		}
		return parsed, false, true
	}
	return time.Time{}, false, false
}

func sameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.YearDay() == bu.YearDay()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
