package state

import (
	"sync"
	"time"
)

// Manager хранит диалоги пользователей бота в памяти
type Manager struct {
	mu      sync.Mutex
	dialogs map[int64]Dialog // telegramID -> Dialog
	ttl     time.Duration
	now     func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		dialogs: make(map[int64]Dialog),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Start начинает диалог, заменяя предыдущий
func (sm *Manager) Start(telegramID int64, state UserState, sessionID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.dialogs, telegramID)
		return
	}
	sm.dialogs[telegramID] = Dialog{
		State:     state,
		SessionID: sessionID,
		ExpiresAt: sm.now().Add(sm.ttl),
	}
}

// Get возвращает активный диалог. Просроченный диалог удаляется.
func (sm *Manager) Get(telegramID int64) (Dialog, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	d, ok := sm.dialogs[telegramID]
	if !ok {
		return Dialog{}, false
	}
	if !sm.now().Before(d.ExpiresAt) {
		delete(sm.dialogs, telegramID)
		return Dialog{}, false
	}
	return d, true
}

// Take возвращает активный диалог и сразу завершает его
func (sm *Manager) Take(telegramID int64) (Dialog, bool) {
	d, ok := sm.Get(telegramID)
	if ok {
		sm.Clear(telegramID)
	}
	return d, ok
}

// Clear завершает диалог пользователя
func (sm *Manager) Clear(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.dialogs, telegramID)
}
