package state

import "time"

// UserState текущий шаг диалога пользователя
type UserState string

const (
	StateNone UserState = "" // Нет активного диалога

	StateCancelReason   UserState = "cancel_reason"   // ждём причину отмены занятия
	StateSessionNotes   UserState = "session_notes"   // ждём заметки к занятию
	StateSessionSummary UserState = "session_summary" // ждём итог завершённого занятия
)

// DefaultTTL сколько живёт незавершённый диалог
const DefaultTTL = 10 * time.Minute

// Dialog хранит шаг диалога и занятие, к которому он относится
type Dialog struct {
	State     UserState
	SessionID int64
	ExpiresAt time.Time
}
