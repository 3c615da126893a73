package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/formatting"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// commandArgs отделяет аргументы от команды: "/book 3 19.10.2026" -> ["3", "19.10.2026"]
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// commandTail возвращает текст после команды и n аргументов как есть
func commandTail(text string, n int) string {
	rest := strings.TrimSpace(text)
	for i := 0; i <= n; i++ {
		idx := strings.IndexAny(rest, " \t\n")
		if idx < 0 {
			return ""
		}
		rest = strings.TrimSpace(rest[idx:])
	}
	return rest
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ValidationErrorf("%s must be a positive number, got %q", what, s)
	}
	return id, nil
}

func parseMinutes(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, model.ValidationErrorf("duration must be a positive number of minutes, got %q", s)
	}
	return n, nil
}

// slotArgs аргументы /addslot: "пн,ср 10:00 12:00 [31.12.2026]"
type slotArgs struct {
	Days          []time.Weekday
	StartMinute   int
	EndMinute     int
	RecurrenceEnd *time.Time
}

func parseSlotArgs(args []string, loc *time.Location) (slotArgs, error) {
	var res slotArgs
	if len(args) < 3 || len(args) > 4 {
		return res, model.ValidationErrorf("usage: /addslot пн,ср 10:00 12:00 [31.12.2026]")
	}

	var err error
	if res.Days, err = formatting.ParseWeekdays(args[0]); err != nil {
		return res, err
	}
	if res.StartMinute, err = formatting.ParseMinute(args[1]); err != nil {
		return res, err
	}
	if res.EndMinute, err = formatting.ParseMinute(args[2]); err != nil {
		return res, err
	}
	if len(args) == 4 {
		d, err := formatting.ParseDate(args[3], loc)
		if err != nil {
			return res, err
		}
		res.RecurrenceEnd = &d
	}
	return res, nil
}

// bookingArgs аргументы /book: "<курс> <дата> <время> [минуты] [вопрос...]"
type bookingArgs struct {
	CourseID int64
	Start    time.Time
	Minutes  int // 0 = длительность курса
	Question string
}

func parseBookingArgs(text string, loc *time.Location) (bookingArgs, error) {
	var res bookingArgs
	args := commandArgs(text)
	if len(args) < 3 {
		return res, model.ValidationErrorf("usage: /book <курс> <дата> <время> [минуты] [вопрос]")
	}

	var err error
	if res.CourseID, err = parseID(args[0], "course id"); err != nil {
		return res, err
	}
	if res.Start, err = formatting.ParseDateTime(args[1], args[2], loc); err != nil {
		return res, err
	}

	consumed := 3
	if len(args) > 3 {
		if n, err := strconv.Atoi(args[3]); err == nil {
			if n <= 0 {
				return res, model.ValidationErrorf("duration must be a positive number of minutes, got %q", args[3])
			}
			res.Minutes = n
			consumed = 4
		}
	}
	res.Question = commandTail(text, consumed)
	return res, nil
}

// rescheduleArgs аргументы /reschedule: "<занятие> <дата> <время> [минуты]"
type rescheduleArgs struct {
	SessionID int64
	Start     time.Time
	Minutes   *int
}

func parseRescheduleArgs(args []string, loc *time.Location) (rescheduleArgs, error) {
	var res rescheduleArgs
	if len(args) < 3 || len(args) > 4 {
		return res, model.ValidationErrorf("usage: /reschedule <занятие> <дата> <время> [минуты]")
	}

	var err error
	if res.SessionID, err = parseID(args[0], "session id"); err != nil {
		return res, err
	}
	if res.Start, err = formatting.ParseDateTime(args[1], args[2], loc); err != nil {
		return res, err
	}
	if len(args) == 4 {
		n, err := parseMinutes(args[3])
		if err != nil {
			return res, err
		}
		res.Minutes = &n
	}
	return res, nil
}

// courseArgs аргументы /addcourse: "<минуты> <название> [| описание]"
type courseArgs struct {
	Duration    int
	Name        string
	Description string
}

func parseCourseArgs(text string) (courseArgs, error) {
	var res courseArgs
	args := commandArgs(text)
	if len(args) < 2 {
		return res, model.ValidationErrorf("usage: /addcourse <минуты> <название> [| описание]")
	}

	var err error
	if res.Duration, err = parseMinutes(args[0]); err != nil {
		return res, err
	}

	name, description, _ := strings.Cut(commandTail(text, 1), "|")
	res.Name = strings.TrimSpace(name)
	res.Description = strings.TrimSpace(description)
	return res, nil
}
