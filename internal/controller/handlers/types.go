package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
)

// TokenIssuer выпускает токены для HTTP API
type TokenIssuer interface {
	GenerateToken(userID int64, ttl time.Duration) (string, error)
}

// TokenTTL срок жизни токена, выданного через /token
const TokenTTL = 24 * time.Hour

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService      *service.UserService
	courseService    *service.CourseService
	timeSlotService  *service.TimeSlotService
	finder           *service.AvailabilityFinder
	schedulerService *service.SchedulingService
	lifecycle        *service.SessionLifecycleManager
	tokens           TokenIssuer
	stateManager     *state.Manager
	location         *time.Location
	logger           *zap.Logger
}

// NewHandlers создаёт обработчик команд. tokens может быть nil, тогда /token отключена.
func NewHandlers(
	userService *service.UserService,
	courseService *service.CourseService,
	timeSlotService *service.TimeSlotService,
	finder *service.AvailabilityFinder,
	schedulerService *service.SchedulingService,
	lifecycle *service.SessionLifecycleManager,
	tokens TokenIssuer,
	stateManager *state.Manager,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	if location == nil {
		location = time.UTC
	}
	return &Handlers{
		userService:      userService,
		courseService:    courseService,
		timeSlotService:  timeSlotService,
		finder:           finder,
		schedulerService: schedulerService,
		lifecycle:        lifecycle,
		tokens:           tokens,
		stateManager:     stateManager,
		location:         location,
		logger:           logger,
	}
}
