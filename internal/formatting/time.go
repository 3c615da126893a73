package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

// FormatMinute переводит минуты от полуночи в "ЧЧ:ММ"
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseMinute разбирает "ЧЧ:ММ" в минуты от полуночи; допускается "24:00"
func ParseMinute(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, model.ValidationErrorf("time %q must look like 10:30", s)
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || h < 0 || m < 0 || m > 59 || len(mm) != 2 {
		return 0, model.ValidationErrorf("time %q must look like 10:30", s)
	}
	minute := h*60 + m
	if minute > model.MinutesPerDay {
		return 0, model.ValidationErrorf("time %q is past midnight", s)
	}
	return minute, nil
}

// ParseDate разбирает дату "02.01.2006" или "2006-01-02" в зоне loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02.01.2006", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, model.ValidationErrorf("date %q must look like 19.10.2026", s)
}

// ParseDateTime разбирает "02.01.2006 15:04" или "2006-01-02 15:04" в зоне loc
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	minute, err := ParseMinute(clock)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(minute) * time.Minute), nil
}

var weekdayNames = []string{
	"Воскресенье",
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
}

var weekdayShortNames = []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

var weekdayEnglish = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// WeekdayName возвращает название дня недели на русском
func WeekdayName(day time.Weekday) string {
	if day >= time.Sunday && day <= time.Saturday {
		return weekdayNames[day]
	}
	return "Неизвестно"
}

// WeekdayShortName возвращает краткое название дня недели на русском
func WeekdayShortName(day time.Weekday) string {
	if day >= time.Sunday && day <= time.Saturday {
		return weekdayShortNames[day]
	}
	return "?"
}

// ParseWeekday понимает "пн", "Понедельник", "mon", "monday" и номер 0-6 (0 = воскресенье)
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	for i := range weekdayNames {
		if s == strings.ToLower(weekdayShortNames[i]) ||
			s == strings.ToLower(weekdayNames[i]) ||
			s == weekdayEnglish[i] ||
			s == strings.ToLower(time.Weekday(i).String()) {
			return time.Weekday(i), nil
		}
	}
	return 0, model.ValidationErrorf("unknown day of week %q", s)
}

// ParseWeekdays разбирает список дней через запятую: "пн,ср,пт"
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		day, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, model.ValidationErrorf("at least one day of week is required")
	}
	return days, nil
}
