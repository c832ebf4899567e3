package service

import (
	"math/rand/v2"
	"time"
)

// Dice is the source of randomness for seats, turns and skills.
type Dice interface {
	IntN(n int) int
	Float64() float64
}

type randomDice struct{}

// NewRandomDice returns dice backed by the runtime's global generator.
func NewRandomDice() Dice {
	return randomDice{}
}

func (randomDice) IntN(n int) int {
	return rand.IntN(n) //nolint: gosec // game randomness, not security
}

func (randomDice) Float64() float64 {
	return rand.Float64() //nolint: gosec // game randomness, not security
}

// Scheduler runs deferred work.
type Scheduler interface {
	AfterFunc(delay time.Duration, fn func())
}

type timeScheduler struct{}

func NewTimeScheduler() Scheduler {
	return timeScheduler{}
}

func (timeScheduler) AfterFunc(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}
