package game

import (
	"errors"
	"time"
)

// State - состояние игровой сессии
type State string

const (
	StateReady    State = "ready"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// FinishReason - почему раунд завершился
type FinishReason string

const (
	FinishTimeout   FinishReason = "timeout"
	FinishCompleted FinishReason = "completed"
)

const (
	// длительность раунда по умолчанию в секундах
	DefaultRoundSeconds = 60
	// период тика таймера
	DefaultTickInterval = time.Second
)

var (
	// операция недопустима в текущем состоянии, состояние не изменилось
	ErrInvalidTransition = errors.New("операция недопустима в текущем состоянии")
	ErrInvalidClick      = errors.New("некорректные координаты клика")
)

// EventType - тип события сессии, отправляемого клиенту
type EventType string

const (
	EventStarted  EventType = "started"
	EventTick     EventType = "tick"
	EventHit      EventType = "hit"
	EventFinished EventType = "finished"
	// текущее состояние по запросу клиента
	EventState EventType = "state"
)

// Event - событие сессии для подписчиков (websocket)
type Event struct {
	Type     EventType `json:"type"`
	Snapshot Snapshot  `json:"session"`
}
